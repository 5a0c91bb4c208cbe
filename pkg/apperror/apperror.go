package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation error")
	ErrEmptyBody    = errors.New("empty body")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal server error")
)

const (
	MessageEmptyBody  = "Request body cannot be empty"
	MessageValidation = "Validation Error"
	MessageInternal   = "Something went wrong!"
)

type AppError struct {
	BaseError  error
	Message    string
	Details    string
	Err        error
	Violations []string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.BaseError.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.BaseError.Error(), e.Message, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.BaseError
}

// Cause returns the most specific error text available, used as the
// "error" field of 5xx responses.
func (e *AppError) Cause() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Details != "" {
		return e.Details
	}
	return e.Message
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewNotFound(resource, identifier string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	details := fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier)
	return NewAppError(ErrNotFound, msg, details, nil)
}

func NewInvalidInput(details string, err error) *AppError {
	return NewAppError(ErrInvalidInput, "Invalid input provided", details, err)
}

func NewEmptyBody() *AppError {
	return NewAppError(ErrEmptyBody, MessageEmptyBody, "", nil)
}

func NewValidation(violations []string) *AppError {
	e := NewAppError(ErrValidation, MessageValidation, fmt.Sprintf("%d field(s) failed validation", len(violations)), nil)
	e.Violations = violations
	return e
}

func NewConflict(resource, field, value string) *AppError {
	msg := fmt.Sprintf("%s conflict", resource)
	details := fmt.Sprintf("%s with %s '%s' was modified concurrently", resource, field, value)
	return NewAppError(ErrConflict, msg, details, nil)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, "An internal server error occurred", details, err)
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation), errors.Is(err, ErrEmptyBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (e *AppError) ToJSON() gin.H {
	switch {
	case errors.Is(e, ErrEmptyBody):
		return gin.H{"message": MessageEmptyBody}
	case errors.Is(e, ErrValidation):
		violations := e.Violations
		if violations == nil {
			violations = []string{}
		}
		return gin.H{"message": MessageValidation, "errors": violations}
	case errors.Is(e, ErrInternal):
		return gin.H{"message": MessageInternal, "error": e.Cause()}
	}
	return gin.H{
		"message": e.Message,
		"error":   e.Cause(),
	}
}

// InternalJSON is the body for errors that never became an AppError.
func InternalJSON(err error) gin.H {
	return gin.H{"message": MessageInternal, "error": err.Error()}
}
