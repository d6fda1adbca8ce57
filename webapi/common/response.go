// Package common holds the response envelopes and request helpers shared by
// every HTTP handler.
package common

import (
	"errors"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Code     string `json:"code,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SuccessResponseJSON writes a Response envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ProblemDetailsJSON writes an RFC 9457 problem. The status is derived from
// err unless an int is passed in args; a string in args replaces the detail.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := fiber.StatusInternalServerError
	if err != nil {
		status = ErrorToStatusCode(err)
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Instance: c.OriginalURL(),
	}
	if err != nil {
		pd.Detail = err.Error()
		if code := domain.CodeOf(err); code != domain.CodeInternal {
			pd.Code = string(code)
		}
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		default:
			pd.Errors = v
		}
	}
	pd.Status = status
	return c.Status(status).JSON(pd, "application/problem+json")
}

// ErrorToStatusCode maps domain errors to appropriate HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAdmissionRejected):
		return fiber.StatusTooManyRequests
	case errors.Is(err, domain.ErrQueueSaturated), errors.Is(err, domain.ErrDispatcherClosed):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrVersionConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrAccountLockTimeout):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrValidationFailed),
		errors.Is(err, domain.ErrNotificationInvalid),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrUnknownTransactionKind),
		errors.Is(err, domain.ErrSameAccountTransfer):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrDailyLimitExceeded),
		errors.Is(err, domain.ErrAccountInactive):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// Returns a pointer to the struct (populated), or writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", nil, err.Error(), fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return nil, ProblemDetailsJSON(c, "Validation failed", nil, err.Error(), fields, fiber.StatusBadRequest)
		}
		return nil, ProblemDetailsJSON(c, "Validation failed", nil, err.Error(), fiber.StatusBadRequest)
	}
	return &input, nil
}
