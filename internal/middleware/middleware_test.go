package middleware_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/kv"
	"github.com/forvaidya/icomment/internal/middleware"
	"github.com/forvaidya/icomment/internal/ratelimit"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
}

func TestErrorHandlerMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.Invalid("content", "must not be empty"), fiber.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"invalid reference", domain.ErrInvalidReference, fiber.StatusUnprocessableEntity, "INVALID_REFERENCE"},
		{"unauthorized", domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
		{"not found", domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"conflict", domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
		{"storage down", domain.StorageError(io.ErrUnexpectedEOF), fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp()
			app.Get("/boom", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)

			var body middleware.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestErrorHandlerCarriesValidationField(t *testing.T) {
	app := newApp()
	app.Get("/boom", func(c *fiber.Ctx) error { return domain.Invalid("title", "too long") })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "title", body.Field)
}

func TestErrorHandlerHidesInternals(t *testing.T) {
	app := newApp()
	app.Get("/boom", func(c *fiber.Ctx) error { return io.ErrUnexpectedEOF })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, body.Message, "EOF")
}

func TestRateLimitDeniesWith429(t *testing.T) {
	cfg := ratelimit.DefaultConfig()
	cfg.Anonymous.Read = 2
	limiter := ratelimit.New(kv.NewMemory(), cfg, nil)

	app := newApp()
	app.Get("/ping", middleware.RateLimit(limiter, ratelimit.ActionRead), func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Remaining"))
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}

func TestRateLimitAnonymousWritesAlwaysDenied(t *testing.T) {
	limiter := ratelimit.New(kv.NewMemory(), ratelimit.DefaultConfig(), nil)

	app := newApp()
	app.Post("/write", middleware.RateLimit(limiter, ratelimit.ActionWrite), func(c *fiber.Ctx) error {
		return c.SendString("written")
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/write", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
