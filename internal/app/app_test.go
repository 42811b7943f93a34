package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ProductEvent
}

func (p *recordingPublisher) PublishProductEvent(_ context.Context, event models.ProductEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []models.ProductEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.ProductEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func testConfig(t *testing.T, authEnabled bool) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Server:   config.ServerConfig{Port: ":0"},
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Logger:   config.LoggerConfig{Level: "error", Format: "json"},
	}
	if authEnabled {
		hash, err := services.HashPassword("password123")
		require.NoError(t, err)
		cfg.Auth = config.AuthConfig{
			Enabled:           true,
			AdminUsername:     "admin",
			AdminPasswordHash: hash,
			JWTSecret:         "test_jwt_secret",
			TokenTTL:          time.Hour,
		}
	}
	return cfg
}

func send(t *testing.T, application *fiber.App, method, target, body, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := application.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNewApp_PublishesProductEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	application := app.NewApp(testConfig(t, false), repositories.NewMemoryProductRepository(), publisher, zerolog.Nop())

	resp := send(t, application, http.MethodPost, "/products", `{"name":"Hammer","category":"TOOLS"}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	var created models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	target := "/products/" + strconv.FormatUint(uint64(created.ID), 10)

	resp = send(t, application, http.MethodPut, target, `{"price":"9.99"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, application, http.MethodDelete, target, "", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Failed operations publish nothing.
	resp = send(t, application, http.MethodDelete, target, "", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, []models.ProductEventType{
		models.ProductCreated,
		models.ProductUpdated,
		models.ProductDeleted,
	}, publisher.types())

	for _, e := range publisher.events {
		assert.Equal(t, created.ID, e.ProductID)
	}
	require.NotNil(t, publisher.events[1].Product)
	assert.Equal(t, "9.99", publisher.events[1].Product.Price.StringFixed(2))
	assert.Nil(t, publisher.events[2].Product)
}

func TestNewApp_AuthDisabled(t *testing.T) {
	application := app.NewApp(testConfig(t, false), repositories.NewMemoryProductRepository(), nil, zerolog.Nop())

	resp := send(t, application, http.MethodPost, "/auth/login", `{"username":"admin","password":"password123"}`, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = send(t, application, http.MethodPost, "/products", `{"name":"Hat"}`, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestNewApp_AuthEnabled(t *testing.T) {
	application := app.NewApp(testConfig(t, true), repositories.NewMemoryProductRepository(), nil, zerolog.Nop())

	// Reads stay public.
	resp := send(t, application, http.MethodGet, "/products", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Writes need a token.
	resp = send(t, application, http.MethodPost, "/products", `{"name":"Hat"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = send(t, application, http.MethodPost, "/auth/login", `{"username":"admin","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = send(t, application, http.MethodPost, "/auth/login", `{"username":"admin"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = send(t, application, http.MethodPost, "/auth/login", `{"username":"admin","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	require.NotEmpty(t, login.Token)

	resp = send(t, application, http.MethodPost, "/products", `{"name":"Hat"}`, login.Token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = send(t, application, http.MethodPut, "/products/1", `{"name":"Cap"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = send(t, application, http.MethodPut, "/products/1", `{"name":"Cap"}`, login.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, application, http.MethodDelete, "/products/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = send(t, application, http.MethodDelete, "/products/1", "", login.Token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestNewApp_RecoversFromPanics(t *testing.T) {
	application := app.NewApp(testConfig(t, false), repositories.NewMemoryProductRepository(), nil, zerolog.Nop())
	application.Get("/boom", func(*fiber.Ctx) error { panic("boom") })

	resp := send(t, application, http.MethodGet, "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, http.StatusInternalServerError, body["status"])
}
