package models

// ReactionPalette lists the emoji offered by the image viewer.
var ReactionPalette = []string{"❤️", "👍", "🔥", "😍", "🤩", "👏", "💯", "🎉", "😊", "🥰", "✨", "🌟"}

// QuickReactions are the emoji shown on gallery tiles.
var QuickReactions = []string{"❤️", "👍", "🔥"}

// Reaction is an emoji a visitor attached to an image. Reactions are append-only.
type Reaction struct {
	ID        string `gorm:"primaryKey;size:64" json:"id"`
	ImageID   string `gorm:"size:128;not null;index" json:"imageId"`
	Emoji     string `gorm:"size:32;not null" json:"emoji"`
	UserID    string `gorm:"size:64;not null" json:"userId"`
	UserName  string `gorm:"size:128" json:"userName"`
	UserColor string `gorm:"size:16" json:"userColor"`
	Timestamp int64  `gorm:"not null;index" json:"timestamp"`
}

// Comment is a free-text remark attached to an image. Comments are append-only
// and displayed newest first.
type Comment struct {
	ID        string `gorm:"primaryKey;size:64" json:"id"`
	ImageID   string `gorm:"size:128;not null;index" json:"imageId"`
	Text      string `gorm:"type:text;not null" json:"text"`
	UserID    string `gorm:"size:64;not null" json:"userId"`
	UserName  string `gorm:"size:128" json:"userName"`
	UserColor string `gorm:"size:16" json:"userColor"`
	Timestamp int64  `gorm:"not null;index" json:"timestamp"`
}

// CountReactions groups reactions by emoji.
func CountReactions(reactions []Reaction) map[string]int {
	counts := make(map[string]int, len(reactions))
	for _, reaction := range reactions {
		counts[reaction.Emoji]++
	}
	return counts
}
