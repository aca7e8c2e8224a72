// Package eventbus fans interaction events out to subscribers in this process
// and relays them to sibling processes sharing the same machine.
package eventbus

import "github.com/noah-isme/fotoowl-gallery-api/internal/models"

// Kind names an event. It doubles as the name of the cross-context slot.
type Kind string

const (
	KindReactionAdded Kind = "reaction-added"
	KindCommentAdded  Kind = "comment-added"
)

// Kinds lists every event kind.
var Kinds = []Kind{KindReactionAdded, KindCommentAdded}

// ParseKind maps a slot name back to its kind.
func ParseKind(name string) (Kind, bool) {
	for _, kind := range Kinds {
		if string(kind) == name {
			return kind, true
		}
	}
	return "", false
}

// Event is the closed set of bus events. Only types in this package implement it.
type Event interface {
	Kind() Kind
	ImageID() string
	event()
}

// ReactionAdded announces a new reaction.
type ReactionAdded struct {
	Reaction models.Reaction
}

func (ReactionAdded) Kind() Kind        { return KindReactionAdded }
func (e ReactionAdded) ImageID() string { return e.Reaction.ImageID }
func (ReactionAdded) event()            {}

// CommentAdded announces a new comment.
type CommentAdded struct {
	Comment models.Comment
}

func (CommentAdded) Kind() Kind        { return KindCommentAdded }
func (e CommentAdded) ImageID() string { return e.Comment.ImageID }
func (CommentAdded) event()            {}
