package dto

import "github.com/noah-isme/fotoowl-gallery-api/internal/models"

// ReactionRequest is the body of a reaction submission.
type ReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,max=32"`
}

// CommentRequest is the body of a comment submission. Blank text is accepted
// and ignored.
type CommentRequest struct {
	Text string `json:"text" validate:"max=2000"`
}

// InteractionsResponse is the current state of one image.
type InteractionsResponse struct {
	ImageID   string            `json:"imageId"`
	Reactions []models.Reaction `json:"reactions"`
	Comments  []models.Comment  `json:"comments"`
	Counts    map[string]int    `json:"counts"`
}

// NewInteractionsResponse builds the response from the session collections.
func NewInteractionsResponse(imageID string, reactions []models.Reaction, comments []models.Comment) InteractionsResponse {
	return InteractionsResponse{
		ImageID:   imageID,
		Reactions: reactions,
		Comments:  comments,
		Counts:    models.CountReactions(reactions),
	}
}

// StreamMessage is pushed to websocket subscribers of an image. Type is
// "snapshot" for the initial state or the name of the event kind.
type StreamMessage struct {
	Type         string                `json:"type"`
	ImageID      string                `json:"imageId"`
	Reaction     *models.Reaction      `json:"reaction,omitempty"`
	Comment      *models.Comment       `json:"comment,omitempty"`
	Interactions *InteractionsResponse `json:"interactions,omitempty"`
}
