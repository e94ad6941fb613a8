package core

import "net/http"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// APIError is a structured rejection from the backend: an HTTP status code,
// an optional human-readable detail and optional field-level errors.
type APIError struct {
	StatusCode int
	Detail     string
	Fields     []FieldError
}

func NewAPIError(code int, detail string, flds ...FieldError) *APIError {
	return &APIError{StatusCode: code, Detail: detail, Fields: flds}
}

func (err APIError) Error() string {
	if err.Detail != "" {
		return err.Detail
	}
	return http.StatusText(err.StatusCode)
}
