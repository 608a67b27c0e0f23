package types

import "fmt"

// Error type tags used by the handlers to pick a response status.
const (
	ErrTypeValidation = "validation"
	ErrTypeNotFound   = "not_found"
	ErrTypeConflict   = "conflict"
	ErrTypeBadPath    = "bad_path"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// NewValidationError reports rejected input; no state was changed.
func NewValidationError(format string, args ...interface{}) *CustomError {
	return &CustomError{Code: 400, Message: fmt.Sprintf(format, args...), Type: ErrTypeValidation}
}

// NewNotFoundError reports a missing entity, attachment or physical file.
func NewNotFoundError(format string, args ...interface{}) *CustomError {
	return &CustomError{Code: 404, Message: fmt.Sprintf(format, args...), Type: ErrTypeNotFound}
}

// NewConflictError reports a duplicate unique key (identifier or part number collision).
func NewConflictError(format string, args ...interface{}) *CustomError {
	return &CustomError{Code: 409, Message: fmt.Sprintf(format, args...), Type: ErrTypeConflict}
}

// NewBadPathError reports a stored relative path resolving outside the upload root.
func NewBadPathError(format string, args ...interface{}) *CustomError {
	return &CustomError{Code: 400, Message: fmt.Sprintf(format, args...), Type: ErrTypeBadPath}
}
