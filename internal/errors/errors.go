package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidAmount         ErrorCode = "invalid_amount"
	InvalidInput          ErrorCode = "invalid_input"
	BusinessRuleViolation ErrorCode = "business_rule_violation"
	UnknownAccount        ErrorCode = "unknown_account"
	DuplicateAccount      ErrorCode = "duplicate_account"
	TransferFailed        ErrorCode = "transfer_failed"
	PersistenceError      ErrorCode = "persistence_error"
	InternalError         ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, e.g. the failed leg of a transfer.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so callers can test
// errors.Is(err, errors.ErrInvalidAmount) regardless of the message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// HTTPStatus maps an error code to the status the HTTP surface responds with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidAmount, InvalidInput:
		return http.StatusBadRequest
	case BusinessRuleViolation, TransferFailed:
		return http.StatusUnprocessableEntity
	case UnknownAccount:
		return http.StatusNotFound
	case DuplicateAccount:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrInvalidAmount       = NewAppError(InvalidAmount, "amount must be positive")
	ErrSameAccountTransfer = NewAppError(InvalidAmount, "cannot transfer to the same account")
	ErrUnknownAccount      = NewAppError(UnknownAccount, "account not found")
	ErrDuplicateAccount    = NewAppError(DuplicateAccount, "account already exists")
)
