package models

// Identity is the pseudo-random visitor identity owned by one gallery process.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Color       string `json:"color"`
	AvatarURL   string `json:"avatar"`
}

// IsZero reports whether the identity was never generated.
func (i Identity) IsZero() bool {
	return i.ID == ""
}
