package dto

// PreferencesUpdateRequest changes UI preferences. Omitted fields are kept;
// ToggleTheme flips the theme and takes precedence over Theme.
type PreferencesUpdateRequest struct {
	Theme       *string `json:"theme" validate:"omitempty,oneof=light dark"`
	MoodFilter  *string `json:"moodFilter" validate:"omitempty,oneof=all nature urban people abstract minimal vibrant"`
	ViewMode    *string `json:"viewMode" validate:"omitempty,oneof=grid masonry carousel"`
	ToggleTheme bool    `json:"toggleTheme"`
}
