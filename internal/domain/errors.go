package domain

import "net/http"

// ErrorKind classifies an AppError. The transport layer maps it to an API error code.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "NotFound"
	KindBadRequest          ErrorKind = "BadRequest"
	KindInternalServerError ErrorKind = "InternalServerError"
	KindBusinessLogic       ErrorKind = "BusinessLogicError"
	KindDatabase            ErrorKind = "DatabaseError"
	KindValidation          ErrorKind = "ValidationError"
	KindConflict            ErrorKind = "Conflict"
)

// StatusCode returns the HTTP status conventionally attached to the kind.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest, KindValidation:
		return http.StatusBadRequest
	case KindBusinessLogic:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the structured error carried by every failed Result.
// Code is echoed verbatim by the transport and Message is surfaced to the caller.
type AppError struct {
	Kind    ErrorKind `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is reports whether target is the kind sentinel for e, so errors.Is(err, domain.ErrNotFound)
// works for any NotFound AppError regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Message != "" {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrNotFound            = &AppError{Kind: KindNotFound, Code: http.StatusNotFound}
	ErrBadRequest          = &AppError{Kind: KindBadRequest, Code: http.StatusBadRequest}
	ErrInternalServerError = &AppError{Kind: KindInternalServerError, Code: http.StatusInternalServerError}
	ErrBusinessLogic       = &AppError{Kind: KindBusinessLogic, Code: http.StatusForbidden}
	ErrDatabase            = &AppError{Kind: KindDatabase, Code: http.StatusInternalServerError}
	ErrValidation          = &AppError{Kind: KindValidation, Code: http.StatusBadRequest}
	ErrConflict            = &AppError{Kind: KindConflict, Code: http.StatusConflict}
)

// NewAppError builds an AppError with the conventional status code for kind.
func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Code: kind.StatusCode()}
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(KindNotFound, message)
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(KindBadRequest, message)
}

func NewInternalServerError(message string) *AppError {
	return NewAppError(KindInternalServerError, message)
}

func NewBusinessLogicError(message string) *AppError {
	return NewAppError(KindBusinessLogic, message)
}

func NewDatabaseError(message string) *AppError {
	return NewAppError(KindDatabase, message)
}

func NewValidationError(message string) *AppError {
	return NewAppError(KindValidation, message)
}

func NewConflictError(message string) *AppError {
	return NewAppError(KindConflict, message)
}
