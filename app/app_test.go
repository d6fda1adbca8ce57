package app

import (
	"io"
	"testing"
	"time"

	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/amirasaad/smartbank/pkg/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAndMetrics(t *testing.T) {
	app := New(testutils.MemoryDeps(nil))

	resp := testutils.MakeRequest(t, app, fiber.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = testutils.MakeRequest(t, app, fiber.MethodPost, "/api/v1/accounts", `{"customerName":"Kiran Shah","initialBalance":10}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = testutils.MakeRequest(t, app, fiber.MethodGet, "/metrics", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestUnknownRouteIsProblem(t *testing.T) {
	app := New(testutils.MemoryDeps(nil))

	resp := testutils.MakeRequest(t, app, fiber.MethodGet, "/nope", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	p := testutils.DecodeProblem(t, resp)
	assert.Equal(t, fiber.StatusNotFound, p.Status)
}

func TestEdgeRateLimit(t *testing.T) {
	cfg := testutils.TestConfig()
	cfg.Server = &config.Server{MaxRequests: 2, Window: time.Minute}
	app := New(testutils.MemoryDeps(cfg))

	for i := 0; i < 2; i++ {
		resp := testutils.MakeRequest(t, app, fiber.MethodGet, "/health", "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp := testutils.MakeRequest(t, app, fiber.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestNotificationsRouteOnlyWithSubmitter(t *testing.T) {
	app := New(testutils.MemoryDeps(nil))
	resp := testutils.MakeRequest(t, app, fiber.MethodPost, "/api/v1/notifications/send",
		`{"userId":"u1","channel":"EMAIL","message":"hi"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
