package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
)

func TestProfileHandler_IdentityIsStable(t *testing.T) {
	stack := newLocalStack(t)

	resp := doJSON(t, stack.app, http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var first envelope[models.Identity]
	decodeResponse(t, resp, &first)
	require.NotEmpty(t, first.Data.ID)
	require.NotEmpty(t, first.Data.DisplayName)
	require.Contains(t, first.Data.AvatarURL, "seed=")

	resp = doJSON(t, stack.app, http.MethodGet, "/api/v1/me", nil)
	var second envelope[models.Identity]
	decodeResponse(t, resp, &second)
	require.Equal(t, first.Data, second.Data)

	resp = doJSON(t, stack.app, http.MethodPost, "/api/v1/me/reset", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var reset envelope[models.Identity]
	decodeResponse(t, resp, &reset)
	require.NotEqual(t, first.Data.ID, reset.Data.ID)
}

func TestProfileHandler_Preferences(t *testing.T) {
	stack := newLocalStack(t)

	resp := doJSON(t, stack.app, http.MethodGet, "/api/v1/preferences", nil)
	var defaults envelope[models.Preferences]
	decodeResponse(t, resp, &defaults)
	require.Equal(t, models.DefaultPreferences(), defaults.Data)

	resp = doJSON(t, stack.app, http.MethodPatch, "/api/v1/preferences", map[string]interface{}{
		"toggleTheme": true,
		"viewMode":    "masonry",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var updated envelope[models.Preferences]
	decodeResponse(t, resp, &updated)
	require.Equal(t, models.ThemeDark, updated.Data.Theme)
	require.Equal(t, "masonry", updated.Data.ViewMode)
	require.Equal(t, "all", updated.Data.MoodFilter)
	require.Equal(t, updated.Data, stack.state.Preferences())
}

func TestProfileHandler_RejectsUnknownViewMode(t *testing.T) {
	stack := newLocalStack(t)

	resp := doJSON(t, stack.app, http.MethodPatch, "/api/v1/preferences", map[string]string{"viewMode": "list"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body envelope[any]
	decodeResponse(t, resp, &body)
	require.Equal(t, "oneof", body.Details["viewmode"])
	require.Equal(t, "grid", stack.state.Preferences().ViewMode)
}
