package errors

import (
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"
)

// Machine-readable error codes returned alongside the HTTP status so
// clients can render specific messages instead of generic failures.
const (
	CodeSoldOut         = "SOLD_OUT"
	CodeAlreadyClaimed  = "ALREADY_CLAIMED"
	CodeMissingOption   = "MISSING_OPTION"
	CodeInvalidOption   = "INVALID_OPTION"
	CodeNotFound        = "NOT_FOUND"
	CodeAlreadyRedeemed = "ALREADY_REDEEMED"
	CodeClaimVoid       = "CLAIM_VOID"
	CodeClaimExpired    = "CLAIM_EXPIRED"
	CodeNotInWindow     = "NOT_IN_WINDOW"
	CodeNotAuthorized   = "NOT_AUTHORIZED"
)

type AppError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(statusCode int, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
	}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func NewUnauthorizedError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusUnauthorized, message[0])
	}
	return NewAppError(http.StatusUnauthorized, "Unauthorized")
}

func NewForbiddenError(code, message string) *AppError {
	return &AppError{
		StatusCode: http.StatusForbidden,
		Code:       code,
		Message:    message,
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		StatusCode: http.StatusNotFound,
		Code:       CodeNotFound,
		Message:    message,
	}
}

// NewConflictError covers the expected, frequent rejections of the
// claim flow: capacity, uniqueness and state conflicts.
func NewConflictError(code, message string) *AppError {
	return &AppError{
		StatusCode: http.StatusConflict,
		Code:       code,
		Message:    message,
	}
}

func NewValidationError(code, message string) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Code:       code,
		Message:    message,
	}
}

func NewInternalServerError(originalError error, message string) *AppError {
	logrus.Errorf("[%s] %s", reflect.TypeOf(originalError).String(), originalError)
	return NewAppError(http.StatusInternalServerError, message)
}
