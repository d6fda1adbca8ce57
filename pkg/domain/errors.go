package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrVersionConflict is returned when a row changed underneath a locked update
	ErrVersionConflict = errors.New("account version conflict")
	// ErrInvalidDateRange is returned when a history window starts after it ends
	ErrInvalidDateRange = errors.New("start date cannot be after end date")
)

// Transaction processing errors. Each maps to one entry of the error code
// taxonomy through CodeOf.
var (
	// ErrAdmissionRejected is returned when the rate limiter denies a request.
	ErrAdmissionRejected = errors.New("too many requests, please try again later")
	// ErrValidationFailed is returned when a request is malformed or outside the amount bounds.
	ErrValidationFailed = errors.New("validation failed")
	// ErrAccountNotFound is returned when a referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountInactive is returned when a referenced account is not ACTIVE.
	ErrAccountInactive = errors.New("account is not active")
	// ErrInsufficientBalance is returned when a debit exceeds the available balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrDailyLimitExceeded is returned when a debit would push the daily total over the ceiling.
	ErrDailyLimitExceeded = errors.New("daily transaction limit exceeded")
	// ErrSameAccountTransfer is returned when a transfer names the same account on both sides.
	ErrSameAccountTransfer = errors.New("cannot transfer to same account")
	// ErrAccountLockTimeout is returned when an account lock could not be acquired in time.
	ErrAccountLockTimeout = errors.New("timed out waiting for account lock")
	// ErrUnknownTransactionKind is returned when no payment strategy is registered for a kind.
	ErrUnknownTransactionKind = errors.New("unknown transaction kind")
)

// Notification errors
var (
	// ErrQueueSaturated is returned when the notification queue is full.
	ErrQueueSaturated = errors.New("notification queue is full")
	// ErrDispatcherClosed is returned when submitting after shutdown started.
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
	// ErrNotificationInvalid is returned when a notification has no channel or message.
	ErrNotificationInvalid = errors.New("channel and message are required")
)

// Rejection is a business rule failure carrying the human readable reason
// shown to callers. It unwraps to the sentinel that classifies it.
type Rejection struct {
	Err    error
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

func (r *Rejection) Unwrap() error { return r.Err }

// Reject builds a Rejection for sentinel with a formatted reason.
func Reject(sentinel error, format string, args ...any) error {
	return &Rejection{Err: sentinel, Reason: fmt.Sprintf(format, args...)}
}
