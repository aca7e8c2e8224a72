package models

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Moods parameterise the image search collaborator.
var Moods = []string{"all", "nature", "urban", "people", "abstract", "minimal", "vibrant"}

// ViewModes lists the supported gallery layouts.
var ViewModes = []string{"grid", "masonry", "carousel"}

// Preferences captures per-context UI settings persisted next to the identity.
type Preferences struct {
	Theme      string `json:"theme"`
	MoodFilter string `json:"moodFilter"`
	ViewMode   string `json:"viewMode"`
}

// DefaultPreferences returns the settings used before any preference is stored.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight, MoodFilter: "all", ViewMode: "grid"}
}

// ValidMood reports whether mood is a known mood filter.
func ValidMood(mood string) bool {
	return containsValue(Moods, mood)
}

// ValidViewMode reports whether mode is a known view mode.
func ValidViewMode(mode string) bool {
	return containsValue(ViewModes, mode)
}

func containsValue(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
