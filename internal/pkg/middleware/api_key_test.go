package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedApp() *fiber.App {
	app := fiber.New()
	app.Post("/internal", InternalAPIKeyMiddleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestInternalAPIKeyMiddleware(t *testing.T) {
	t.Setenv("INTERNAL_API_KEY", "super-secret")
	app := newGuardedApp()

	t.Run("x-api-key header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/internal", nil)
		req.Header.Set("X-API-Key", "super-secret")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/internal", nil)
		req.Header.Set("Authorization", "Bearer super-secret")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/internal", nil)
		req.Header.Set("X-API-Key", "guessed")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing key", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("POST", "/internal", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestInternalAPIKeyMiddlewareUnconfigured(t *testing.T) {
	t.Setenv("INTERNAL_API_KEY", "")
	app := newGuardedApp()

	req := httptest.NewRequest("POST", "/internal", nil)
	req.Header.Set("X-API-Key", "anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
