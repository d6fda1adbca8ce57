// Package testutils provides helpers for HTTP handler tests backed by the
// in-memory store.
package testutils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/smartbank/infra/repository/memory"
	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/amirasaad/smartbank/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the success response written by the handlers.
type Envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Problem mirrors the RFC 9457 body written on errors.
type Problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// TestConfig returns a configuration with generous limits for handler tests.
func TestConfig() *config.App {
	return &config.App{
		RateLimit: &config.RateLimit{Capacity: 1000, RefillInterval: time.Second},
		Limits: &config.Limits{
			MinAmount:    decimal.RequireFromString("0.01"),
			MaxAmount:    decimal.RequireFromString("1000000.00"),
			DailyCeiling: decimal.RequireFromString("500000.00"),
			Currency:     "INR",
		},
		Notification: &config.Notification{QueueSize: 16, Workers: 1, GracePeriod: time.Second},
	}
}

// MemoryDeps wires dependencies over a fresh in-memory store.
func MemoryDeps(cfg *config.App) config.Deps {
	if cfg == nil {
		cfg = TestConfig()
	}
	store := memory.NewStore(memory.WithLockTimeout(2 * time.Second))
	return config.Deps{
		Uow:     memory.NewUoW(store),
		Metrics: metrics.NewCollector("test"),
		Config:  cfg,
	}
}

// MakeRequest is a helper for making HTTP requests in tests
func MakeRequest(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() }) //nolint: errcheck
	return resp
}

// DecodeData decodes a success envelope and unmarshals its data into out.
func DecodeData(t *testing.T, resp *http.Response, out any) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

// DecodeProblem decodes a problem details body.
func DecodeProblem(t *testing.T, resp *http.Response) Problem {
	t.Helper()
	var p Problem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return p
}
