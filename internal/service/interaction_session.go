package service

import (
	"context"
	"sync"

	"github.com/noah-isme/fotoowl-gallery-api/internal/eventbus"
	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
)

// imageSession is the live view of one image's reactions and comments. Bus
// events for the image are merged in by record id, so a record delivered more
// than once is applied once.
type imageSession struct {
	imageID string

	mu            sync.RWMutex
	reactions     []models.Reaction
	comments      []models.Comment
	seenReactions map[string]struct{}
	seenComments  map[string]struct{}

	unsubscribe []func()
	closeOnce   sync.Once
}

func newImageSession(imageID string) *imageSession {
	return &imageSession{
		imageID:       imageID,
		reactions:     []models.Reaction{},
		comments:      []models.Comment{},
		seenReactions: make(map[string]struct{}),
		seenComments:  make(map[string]struct{}),
	}
}

// attach subscribes the session to both event kinds on bus.
func (s *imageSession) attach(bus *eventbus.Bus) {
	if bus == nil {
		return
	}
	s.unsubscribe = append(s.unsubscribe,
		bus.Subscribe(eventbus.KindReactionAdded, s.handle),
		bus.Subscribe(eventbus.KindCommentAdded, s.handle),
	)
}

func (s *imageSession) handle(_ context.Context, evt eventbus.Event) error {
	if evt.ImageID() != s.imageID {
		return nil
	}
	switch e := evt.(type) {
	case eventbus.ReactionAdded:
		s.applyReaction(e.Reaction)
	case eventbus.CommentAdded:
		s.applyComment(e.Comment)
	}
	return nil
}

// seed installs the collections loaded from storage. Records that arrived on
// the bus before loading finished are kept.
func (s *imageSession) seed(reactions []models.Reaction, comments []models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	early := s.reactions
	s.reactions = make([]models.Reaction, 0, len(reactions)+len(early))
	s.seenReactions = make(map[string]struct{}, len(reactions)+len(early))
	for _, reaction := range reactions {
		s.appendReactionLocked(reaction)
	}
	for _, reaction := range early {
		s.appendReactionLocked(reaction)
	}

	earlyComments := s.comments
	s.comments = make([]models.Comment, 0, len(comments)+len(earlyComments))
	s.seenComments = make(map[string]struct{}, len(comments)+len(earlyComments))
	for _, comment := range comments {
		if _, dup := s.seenComments[comment.ID]; dup {
			continue
		}
		s.seenComments[comment.ID] = struct{}{}
		s.comments = append(s.comments, comment)
	}
	for i := len(earlyComments) - 1; i >= 0; i-- {
		s.prependCommentLocked(earlyComments[i])
	}
}

func (s *imageSession) applyReaction(reaction models.Reaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendReactionLocked(reaction)
}

func (s *imageSession) applyComment(comment models.Comment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prependCommentLocked(comment)
}

func (s *imageSession) appendReactionLocked(reaction models.Reaction) bool {
	if _, dup := s.seenReactions[reaction.ID]; dup {
		return false
	}
	s.seenReactions[reaction.ID] = struct{}{}
	s.reactions = append(s.reactions, reaction)
	return true
}

func (s *imageSession) prependCommentLocked(comment models.Comment) bool {
	if _, dup := s.seenComments[comment.ID]; dup {
		return false
	}
	s.seenComments[comment.ID] = struct{}{}
	s.comments = append([]models.Comment{comment}, s.comments...)
	return true
}

func (s *imageSession) ImageID() string {
	return s.imageID
}

func (s *imageSession) Reactions() []models.Reaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Reaction{}, s.reactions...)
}

func (s *imageSession) Comments() []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Comment{}, s.comments...)
}

// Close detaches the session from the bus.
func (s *imageSession) Close() {
	s.closeOnce.Do(func() {
		for _, unsubscribe := range s.unsubscribe {
			unsubscribe()
		}
	})
}
