package domain

import "errors"

// Code is the stable, machine readable failure code returned to callers.
type Code string

const (
	CodeNone                   Code = ""
	CodeAdmissionRejected      Code = "ADMISSION_REJECTED"
	CodeValidationFailed       Code = "VALIDATION_FAILED"
	CodeAccountNotFound        Code = "ACCOUNT_NOT_FOUND"
	CodeAccountInactive        Code = "ACCOUNT_INACTIVE"
	CodeInsufficientBalance    Code = "INSUFFICIENT_BALANCE"
	CodeDailyLimitExceeded     Code = "DAILY_LIMIT_EXCEEDED"
	CodeSameAccountTransfer    Code = "SAME_ACCOUNT_TRANSFER"
	CodeAccountLockTimeout     Code = "ACCOUNT_LOCK_TIMEOUT"
	CodeQueueSaturated         Code = "QUEUE_SATURATED"
	CodeUnknownTransactionKind Code = "UNKNOWN_TRANSACTION_KIND"
	CodeInternal               Code = "INTERNAL"
)

var codeTable = []struct {
	err  error
	code Code
}{
	{ErrAdmissionRejected, CodeAdmissionRejected},
	{ErrValidationFailed, CodeValidationFailed},
	{ErrAccountNotFound, CodeAccountNotFound},
	{ErrAccountInactive, CodeAccountInactive},
	{ErrInsufficientBalance, CodeInsufficientBalance},
	{ErrDailyLimitExceeded, CodeDailyLimitExceeded},
	{ErrSameAccountTransfer, CodeSameAccountTransfer},
	{ErrAccountLockTimeout, CodeAccountLockTimeout},
	{ErrQueueSaturated, CodeQueueSaturated},
	{ErrUnknownTransactionKind, CodeUnknownTransactionKind},
	{ErrNotificationInvalid, CodeValidationFailed},
	{ErrInvalidDateRange, CodeValidationFailed},
}

// CodeOf maps an error chain to its taxonomy code. A nil error maps to
// CodeNone and anything unrecognised to CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return CodeNone
	}
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return CodeInternal
}
