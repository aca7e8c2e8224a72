package dto

// GalleryQuery captures gallery listing parameters.
type GalleryQuery struct {
	Mood    string `query:"mood" validate:"omitempty,oneof=all nature urban people abstract minimal vibrant"`
	Page    int    `query:"page" validate:"omitempty,min=1"`
	PerPage int    `query:"perPage" validate:"omitempty,min=1,max=30"`
}
