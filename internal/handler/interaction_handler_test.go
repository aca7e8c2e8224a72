package handler_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fotoowl-gallery-api/internal/dto"
	"github.com/noah-isme/fotoowl-gallery-api/internal/handler"
	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
	"github.com/noah-isme/fotoowl-gallery-api/internal/service"
)

func TestInteractionHandler_EmptyImage(t *testing.T) {
	stack := newLocalStack(t)

	resp := doJSON(t, stack.app, http.MethodGet, "/api/v1/images/img-1/interactions", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body envelope[dto.InteractionsResponse]
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "img-1", body.Data.ImageID)
	require.Empty(t, body.Data.Reactions)
	require.Empty(t, body.Data.Comments)
}

func TestInteractionHandler_ReactionsAndComments(t *testing.T) {
	stack := newLocalStack(t)

	resp := doJSON(t, stack.app, http.MethodPost, "/api/v1/images/img-1/reactions", dto.ReactionRequest{Emoji: "❤️"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created envelope[models.Reaction]
	decodeResponse(t, resp, &created)
	require.Equal(t, "reaction added", created.Message)
	require.Equal(t, "img-1", created.Data.ImageID)
	require.NotEmpty(t, created.Data.UserID)

	resp = doJSON(t, stack.app, http.MethodPost, "/api/v1/images/img-1/reactions", dto.ReactionRequest{Emoji: "❤️"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, stack.app, http.MethodPost, "/api/v1/images/img-1/comments", dto.CommentRequest{Text: "first"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, stack.app, http.MethodPost, "/api/v1/images/img-1/comments", dto.CommentRequest{Text: "second"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, stack.app, http.MethodGet, "/api/v1/images/img-1/interactions", nil)
	var body envelope[dto.InteractionsResponse]
	decodeResponse(t, resp, &body)

	require.Len(t, body.Data.Reactions, 2)
	require.Equal(t, 2, body.Data.Counts["❤️"])
	require.Len(t, body.Data.Comments, 2)
	require.Equal(t, "second", body.Data.Comments[0].Text)
	require.Equal(t, "first", body.Data.Comments[1].Text)

	resp = doJSON(t, stack.app, http.MethodGet, "/api/v1/images/img-2/interactions", nil)
	var other envelope[dto.InteractionsResponse]
	decodeResponse(t, resp, &other)
	require.Empty(t, other.Data.Reactions)
}

func TestInteractionHandler_BlankCommentIgnored(t *testing.T) {
	stack := newLocalStack(t)

	resp := doJSON(t, stack.app, http.MethodPost, "/api/v1/images/img-1/comments", dto.CommentRequest{Text: "   "})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body envelope[*models.Comment]
	decodeResponse(t, resp, &body)
	require.Equal(t, "comment ignored", body.Message)
	require.Nil(t, body.Data)

	entries, err := stack.feed.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestInteractionHandler_ReactionValidation(t *testing.T) {
	stack := newLocalStack(t)

	resp := doJSON(t, stack.app, http.MethodPost, "/api/v1/images/img-1/reactions", map[string]string{})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body envelope[any]
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "required", body.Details["emoji"])
}

type stubInteractions struct {
	openErr     error
	reactionErr error
	commentErr  error
}

func (s *stubInteractions) Open(_ context.Context, imageID string) (service.ImageInteractions, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &stubSession{imageID: imageID, parent: s}, nil
}

type stubSession struct {
	imageID string
	parent  *stubInteractions
}

func (s *stubSession) ImageID() string { return s.imageID }
func (s *stubSession) Reactions() []models.Reaction { return nil }
func (s *stubSession) Comments() []models.Comment { return nil }
func (s *stubSession) Close() {}

func (s *stubSession) AddReaction(_ context.Context, emoji string, user models.Identity) (models.Reaction, error) {
	return models.Reaction{ID: "reaction-1", ImageID: s.imageID, Emoji: emoji, UserID: user.ID}, s.parent.reactionErr
}

func (s *stubSession) AddComment(_ context.Context, text string, user models.Identity) (*models.Comment, error) {
	return &models.Comment{ID: "comment-1", ImageID: s.imageID, Text: text, UserID: user.ID}, s.parent.commentErr
}

func newStubInteractionApp(svc *stubInteractions) *fiber.App {
	logger := zerolog.New(io.Discard)
	app := fiber.New()
	handler.NewInteractionHandler(svc, stubIdentity{user: visitor}, validator.New(), logger).Register(app.Group("/images"), nil)
	return app
}

func TestInteractionHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		svc     *stubInteractions
		path    string
		body    interface{}
		status  int
		message string
	}{
		{
			name:   "remote backend on open",
			svc:    &stubInteractions{openErr: fmt.Errorf("%w: connection refused", service.ErrRemoteBackend)},
			path:   "/images/img-1/interactions",
			status: fiber.StatusBadGateway,
		},
		{
			name:   "storage unavailable",
			svc:    &stubInteractions{reactionErr: fmt.Errorf("%w: disk full", service.ErrStorageUnavailable)},
			path:   "/images/img-1/reactions",
			body:   dto.ReactionRequest{Emoji: "🔥"},
			status: fiber.StatusServiceUnavailable,
		},
		{
			name:   "emoji required",
			svc:    &stubInteractions{reactionErr: service.ErrEmojiRequired},
			path:   "/images/img-1/reactions",
			body:   dto.ReactionRequest{Emoji: "🔥"},
			status: fiber.StatusBadRequest,
		},
		{
			name:    "reaction relay failed",
			svc:     &stubInteractions{reactionErr: fmt.Errorf("%w: slot rejected write", service.ErrBroadcastFailed)},
			path:    "/images/img-1/reactions",
			body:    dto.ReactionRequest{Emoji: "🔥"},
			status:  fiber.StatusCreated,
			message: "reaction saved, live update not relayed",
		},
		{
			name:    "comment relay failed",
			svc:     &stubInteractions{commentErr: fmt.Errorf("%w: slot rejected write", service.ErrBroadcastFailed)},
			path:    "/images/img-1/comments",
			body:    dto.CommentRequest{Text: "hello"},
			status:  fiber.StatusCreated,
			message: "comment saved, live update not relayed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			method := http.MethodGet
			if tc.body != nil {
				method = http.MethodPost
			}
			resp := doJSON(t, newStubInteractionApp(tc.svc), method, tc.path, tc.body)
			require.Equal(t, tc.status, resp.StatusCode)

			var body envelope[any]
			decodeResponse(t, resp, &body)
			if tc.message != "" {
				require.Equal(t, tc.message, body.Message)
			}
		})
	}
}
