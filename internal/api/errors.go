package api

import (
	"errors"
	"fmt"
	"net/http"

	"StockForecaster/internal/algorithm"
	"StockForecaster/internal/datastore"
	"StockForecaster/internal/predictor"
)

// AppError represents an application-level error with HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// BadRequestError creates a 400 error.
func BadRequestError(message string) *AppError {
	return NewAppError("ERR_BAD_REQUEST", message, http.StatusBadRequest)
}

// FromDomain translates core error kinds into API errors.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	msg := err.Error()
	switch {
	case errors.Is(err, datastore.ErrNotFound):
		return NewAppError("ERR_NOT_FOUND", msg, http.StatusNotFound).WithError(err)
	case errors.Is(err, predictor.ErrUnknownAlgorithm):
		return NewAppError("ERR_UNKNOWN_ALGORITHM", msg, http.StatusBadRequest).WithError(err)
	case errors.Is(err, algorithm.ErrInvalidParameter):
		return NewAppError("ERR_INVALID_PARAMETER", msg, http.StatusBadRequest).WithError(err)
	case errors.Is(err, algorithm.ErrInsufficientData):
		return NewAppError("ERR_INSUFFICIENT_DATA", msg, http.StatusBadRequest).WithError(err)
	case errors.Is(err, algorithm.ErrNoData):
		return NewAppError("ERR_NO_DATA", msg, http.StatusBadRequest).WithError(err)
	case errors.Is(err, datastore.ErrWriteFailed):
		return NewAppError("ERR_WRITE_FAILED", msg, http.StatusInternalServerError).WithError(err)
	default:
		return NewAppError("ERR_INTERNAL", "Something went wrong", http.StatusInternalServerError).WithError(err)
	}
}
