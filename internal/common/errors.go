package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/pricing"
	"github.com/noah-isme/backend-laundry/internal/store"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// BadRequest reports a malformed request bound to one field or query parameter.
func BadRequest(field, message string, err error) *AppError {
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details:    map[string]any{"field": field},
	}
}

// FromError maps domain errors onto the API error taxonomy.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var fieldsErr validator.ValidationErrors
	if errors.As(err, &fieldsErr) {
		return &AppError{Code: "VALIDATION_FAILED", Message: "request validation failed", HTTPStatus: http.StatusUnprocessableEntity, Err: err, Details: ValidationDetails(fieldsErr)}
	}
	var priceErr *pricing.ValidationError
	if errors.As(err, &priceErr) {
		return &AppError{Code: "VALIDATION_FAILED", Message: priceErr.Error(), HTTPStatus: http.StatusUnprocessableEntity, Err: err,
			Details: map[string]any{"field": priceErr.Field, "reason": priceErr.Reason}}
	}
	var lookupErr *pricing.LookupError
	if errors.As(err, &lookupErr) {
		return &AppError{Code: "UNKNOWN_PRICE", Message: lookupErr.Error(), HTTPStatus: http.StatusUnprocessableEntity, Err: err,
			Details: map[string]any{"itemType": string(lookupErr.Item), "serviceType": string(lookupErr.Service)}}
	}
	var recordErr *laundry.FieldError
	if errors.As(err, &recordErr) {
		return &AppError{Code: "VALIDATION_FAILED", Message: recordErr.Error(), HTTPStatus: http.StatusUnprocessableEntity, Err: err,
			Details: map[string]any{"field": recordErr.Field}}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return &AppError{Code: "BAD_REQUEST", Message: "malformed JSON body", HTTPStatus: http.StatusBadRequest, Err: err,
			Details: map[string]any{"offset": syntaxErr.Offset}}
	case errors.As(err, &typeErr):
		return &AppError{Code: "BAD_REQUEST", Message: "invalid value for " + typeErr.Field, HTTPStatus: http.StatusBadRequest, Err: err,
			Details: map[string]any{"field": typeErr.Field}}
	case errors.Is(err, laundry.ErrNotFound):
		return &AppError{Code: "NOT_FOUND", Message: err.Error(), HTTPStatus: http.StatusNotFound, Err: err}
	case errors.Is(err, laundry.ErrDuplicate):
		return &AppError{Code: "DUPLICATE", Message: err.Error(), HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, laundry.ErrInvalidTransition):
		return &AppError{Code: "INVALID_TRANSITION", Message: err.Error(), HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, store.ErrUnavailable):
		return &AppError{Code: "UNAVAILABLE", Message: "storage temporarily unavailable", HTTPStatus: http.StatusServiceUnavailable, Err: err}
	}
	return &AppError{Code: "INTERNAL", Message: "internal error", HTTPStatus: http.StatusInternalServerError, Err: err}
}
