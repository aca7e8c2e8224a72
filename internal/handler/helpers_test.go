package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fotoowl-gallery-api/internal/eventbus"
	"github.com/noah-isme/fotoowl-gallery-api/internal/handler"
	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
	"github.com/noah-isme/fotoowl-gallery-api/internal/service"
	"github.com/noah-isme/fotoowl-gallery-api/internal/store"
)

var visitor = models.Identity{ID: "user-1", DisplayName: "Swift Fox", Color: "#ff6b6b"}

// localStack wires the handlers to real local services over an in-memory store.
type localStack struct {
	app          *fiber.App
	bus          *eventbus.Bus
	state        *service.AppState
	identity     service.IdentityService
	feed         service.ActivityFeed
	interactions service.InteractionService
}

func newLocalStack(t *testing.T) *localStack {
	t.Helper()

	logger := zerolog.New(io.Discard)
	ctx := context.Background()
	st := store.NewFileStore(memfs.New(), logger)
	bus := eventbus.New(nil, logger)

	state := service.LoadAppState(ctx, st, service.AppStateOptions{}, logger)
	identity := service.NewIdentityService(state, logger)
	feed := service.NewLocalActivityFeed(state, identity, logger)
	interactions := service.NewLocalInteractionService(st, bus, feed, logger)
	validate := validator.New(validator.WithRequiredStructEnabled())

	app := fiber.New()
	api := app.Group("/api/v1")
	images := api.Group("/images")
	handler.NewInteractionHandler(interactions, identity, validate, logger).Register(images, nil)
	handler.NewActivityHandler(feed, logger).Register(api.Group("/activity"))
	profile := handler.NewProfileHandler(identity, state, validate, logger)
	profile.RegisterIdentity(api.Group("/me"))
	profile.RegisterPreferences(api.Group("/preferences"))

	return &localStack{
		app:          app,
		bus:          bus,
		state:        state,
		identity:     identity,
		feed:         feed,
		interactions: interactions,
	}
}

type stubIdentity struct {
	user models.Identity
}

func (s stubIdentity) Ensure(context.Context) models.Identity { return s.user }

func (s stubIdentity) Reset(context.Context) models.Identity { return s.user }

type envelope[T any] struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    T                 `json:"data"`
	Details map[string]string `json:"details"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
