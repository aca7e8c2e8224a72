package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActivityType enumerates the interactions that produce feed entries.
type ActivityType string

const (
	ActivityReaction ActivityType = "reaction"
	ActivityComment  ActivityType = "comment"
)

// CommentPreviewLength bounds the comment text copied into an activity payload.
const CommentPreviewLength = 50

// Activity is a derived feed entry summarising one reaction or comment.
// Payload holds a JSON object whose shape depends on Type.
type Activity struct {
	ID        string       `gorm:"primaryKey;size:64" json:"id"`
	Type      ActivityType `gorm:"size:16;not null" json:"type"`
	ImageID   string       `gorm:"size:128;not null;index" json:"imageId"`
	UserID    string       `gorm:"size:64;not null" json:"userId"`
	UserName  string       `gorm:"size:128" json:"userName"`
	UserColor string       `gorm:"size:16" json:"userColor"`
	Payload   string       `gorm:"column:data;type:text" json:"data"`
	Timestamp int64        `gorm:"not null;index" json:"timestamp"`
}

// ReactionPayload is the payload of a reaction activity.
type ReactionPayload struct {
	Emoji string `json:"emoji"`
}

// CommentPayload is the payload of a comment activity.
type CommentPayload struct {
	Text string `json:"text"`
}

// NewCommentPayload truncates text to the preview length.
func NewCommentPayload(text string) CommentPayload {
	runes := []rune(text)
	if len(runes) > CommentPreviewLength {
		return CommentPayload{Text: string(runes[:CommentPreviewLength]) + "..."}
	}
	return CommentPayload{Text: text}
}

// EncodePayload serialises an activity payload.
func EncodePayload(payload interface{}) (string, error) {
	if payload == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode activity payload: %w", err)
	}
	return string(raw), nil
}

// Describe renders a feed line for the activity. Payloads that fail to parse
// fall back to a generic description.
func (a Activity) Describe() string {
	const fallback = "performed an action"

	payload := strings.TrimSpace(a.Payload)
	if payload == "" {
		payload = "{}"
	}

	switch a.Type {
	case ActivityReaction:
		var data ReactionPayload
		if err := json.Unmarshal([]byte(payload), &data); err != nil {
			return fallback
		}
		return fmt.Sprintf("reacted %s to an image", data.Emoji)
	case ActivityComment:
		var data CommentPayload
		if err := json.Unmarshal([]byte(payload), &data); err != nil {
			return fallback
		}
		return fmt.Sprintf("commented: \"%s\"", data.Text)
	default:
		return fallback
	}
}
