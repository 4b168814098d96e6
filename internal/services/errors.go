package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid     ErrorCode = "invalid"
	ErrorNotFound    ErrorCode = "not_found"
	ErrorBadGateway  ErrorCode = "bad_gateway"
	ErrorUnavailable ErrorCode = "unavailable"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

// Is reports whether target is a ServiceError carrying the same code, so
// errors.Is(err, ErrInvalidInput) matches every invalid-input failure.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Code == e.Code
}

var (
	// ErrInvalidInput flags an unrecognized category value or malformed form input.
	ErrInvalidInput = &ServiceError{Code: ErrorInvalid, Message: "invalid input"}
	// ErrNotFound is returned when a stored assessment does not exist for the caller.
	ErrNotFound = &ServiceError{Code: ErrorNotFound, Message: "not found"}
)

func NewInvalidError(msg string) error    { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error   { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewBadGatewayError(msg string) error { return &ServiceError{Code: ErrorBadGateway, Message: msg} }
func NewUnavailableError(msg string) error {
	return &ServiceError{Code: ErrorUnavailable, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
