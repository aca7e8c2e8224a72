package dto

import "github.com/noah-isme/fotoowl-gallery-api/internal/models"

// ActivityItem is one feed entry with its rendered description.
type ActivityItem struct {
	models.Activity
	Description string `json:"description"`
}

// ActivityFeedResponse lists the recent activity, newest first.
type ActivityFeedResponse struct {
	Items []ActivityItem `json:"items"`
	Total int            `json:"total"`
}
