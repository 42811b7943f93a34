package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catalog/internal/config"
	"catalog/internal/middleware"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c *fiber.Ctx) error {
	return c.SendString("ok")
}

func TestRequireJSON(t *testing.T) {
	app := fiber.New()
	app.Post("/", middleware.RequireJSON(), okHandler)

	tests := []struct {
		name        string
		contentType string
		wantStatus  int
	}{
		{name: "json", contentType: "application/json", wantStatus: http.StatusOK},
		{name: "json with charset", contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "missing", contentType: "", wantStatus: http.StatusUnsupportedMediaType},
		{name: "plain text", contentType: "plain/text", wantStatus: http.StatusUnsupportedMediaType},
		{name: "form", contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	app := fiber.New()
	app.Use(middleware.RequestLogger(logger))
	app.Get("/ok", okHandler)
	app.Get("/fail", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	// Generated request id
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))
	assert.Contains(t, buf.String(), `"path":"/ok"`)
	assert.Contains(t, buf.String(), `"status":200`)

	// Propagated request id and error status
	buf.Reset()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get(middleware.HeaderRequestID))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"status":418`)
}

func TestAuthRequired(t *testing.T) {
	hash, err := services.HashPassword("password123")
	require.NoError(t, err)
	authService := services.NewAuthService(config.AuthConfig{
		Enabled:           true,
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
		JWTSecret:         "test_jwt_secret",
		TokenTTL:          time.Hour,
	}, zerolog.Nop())

	token, err := authService.LoginUser("admin", "password123")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", middleware.AuthRequired(authService), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("username").(string))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
