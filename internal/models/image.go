package models

// GalleryImage is an image returned by the image search collaborator. It is
// not managed by the interaction layer; only its ID is referenced.
type GalleryImage struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Thumb       string `json:"thumb"`
	Alt         string `json:"alt"`
	Author      string `json:"author"`
	AuthorURL   string `json:"authorUrl"`
	DownloadURL string `json:"downloadUrl"`
	Mood        string `json:"mood"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Color       string `json:"color"`
}

// GalleryPage is one page of gallery images.
type GalleryPage struct {
	Images     []GalleryImage `json:"images"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
}
