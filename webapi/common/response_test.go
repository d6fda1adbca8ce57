package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", domain.ErrAccountNotFound), fiber.StatusNotFound},
		{domain.ErrAdmissionRejected, fiber.StatusTooManyRequests},
		{domain.ErrQueueSaturated, fiber.StatusServiceUnavailable},
		{domain.ErrAccountLockTimeout, fiber.StatusServiceUnavailable},
		{domain.ErrVersionConflict, fiber.StatusConflict},
		{domain.Reject(domain.ErrValidationFailed, "bad"), fiber.StatusBadRequest},
		{domain.ErrInvalidDateRange, fiber.StatusBadRequest},
		{domain.ErrInsufficientBalance, fiber.StatusUnprocessableEntity},
		{domain.ErrDailyLimitExceeded, fiber.StatusUnprocessableEntity},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorToStatusCode(tt.err))
		})
	}
}

func TestProblemDetailsJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/missing", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Failed to fetch balance", fmt.Errorf("%w: abc", domain.ErrAccountNotFound))
	})
	app.Get("/override", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Invalid account ID", errors.New("parse"), "must be a UUID", fiber.StatusBadRequest)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/missing", nil))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get(fiber.HeaderContentType))
	var pd ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	assert.Equal(t, "ACCOUNT_NOT_FOUND", pd.Code)
	assert.Equal(t, "/missing", pd.Instance)

	resp2, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/override", nil))
	require.NoError(t, err)
	defer resp2.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusBadRequest, resp2.StatusCode)
	var pd2 ProblemDetails
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&pd2))
	assert.Equal(t, "must be a UUID", pd2.Detail)
	assert.Empty(t, pd2.Code)
}
