package service

import (
	"context"
	"math/rand/v2"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
)

var (
	identityColors     = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7", "#DDA0DD", "#98D8C8"}
	identityAdjectives = []string{"Creative", "Artistic", "Vibrant", "Curious", "Inspired", "Dreamy", "Bold"}
	identityNouns      = []string{"Explorer", "Visionary", "Creator", "Wanderer", "Artist", "Dreamer", "Pioneer"}
)

const avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg"

// IdentityService issues the pseudo-random visitor identity of this context.
type IdentityService interface {
	Ensure(ctx context.Context) models.Identity
	Reset(ctx context.Context) models.Identity
}

type identityService struct {
	mu     sync.Mutex
	state  *AppState
	next   intn
	logger zerolog.Logger
}

// NewIdentityService builds the identity provider over the application state.
func NewIdentityService(state *AppState, logger zerolog.Logger) IdentityService {
	return newIdentityService(state, rand.IntN, logger)
}

func newIdentityService(state *AppState, next intn, logger zerolog.Logger) *identityService {
	return &identityService{
		state:  state,
		next:   next,
		logger: logger.With().Str("component", "identity_service").Logger(),
	}
}

// Ensure returns the stored identity, generating one on first use.
func (s *identityService) Ensure(ctx context.Context) models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.state.User(); ok {
		return user
	}
	return s.replace(ctx)
}

// Reset discards the current identity and issues a new one.
func (s *identityService) Reset(ctx context.Context) models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replace(ctx)
}

func (s *identityService) replace(ctx context.Context) models.Identity {
	user := s.generate()
	if err := s.state.SetUser(ctx, user); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("identity kept in memory only")
	}
	return user
}

func (s *identityService) generate() models.Identity {
	id := randomBase36(s.next, randomIDLength)
	name := identityAdjectives[s.next(len(identityAdjectives))] + " " + identityNouns[s.next(len(identityNouns))]
	color := identityColors[s.next(len(identityColors))]
	seed := randomBase36(s.next, randomIDLength)

	return models.Identity{
		ID:          id,
		DisplayName: name,
		Color:       color,
		AvatarURL:   avatarBaseURL + "?seed=" + url.QueryEscape(seed),
	}
}
