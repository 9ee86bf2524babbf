package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies failures so callers can map them to exit codes
// and HTTP status codes without string matching.
type ErrorType string

const (
	TypeValidation            ErrorType = "validation"
	TypePipeline              ErrorType = "pipeline"
	TypeDependencyMissing     ErrorType = "dependency_missing"
	TypeDownloadFailed        ErrorType = "download_failed"
	TypeLoadFailed            ErrorType = "load_failed"
	TypeInsufficientResources ErrorType = "insufficient_resources"
	TypeSessionRequired       ErrorType = "session_required"
	TypeComposite             ErrorType = "composite"
	TypeDecodeFailed          ErrorType = "decode_failed"
	TypeEncodeFailed          ErrorType = "encode_failed"
	TypeUnsupportedFormat     ErrorType = "unsupported_format"
	TypeFetchFailed           ErrorType = "fetch_failed"
	TypeNotFound              ErrorType = "not_found"
)

// AppError carries a classified error with optional structured details
// and the HTTP status code the error maps to.
type AppError struct {
	Type       ErrorType
	Message    string
	Details    map[string]interface{}
	StatusCode int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key/value pair for logging and API responses.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func New(errType ErrorType, message string, statusCode int, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

func NewValidationError(message string, cause error) *AppError {
	return New(TypeValidation, message, http.StatusBadRequest, cause)
}

func NewPipelineError(message string, cause error) *AppError {
	return New(TypePipeline, message, http.StatusUnprocessableEntity, cause)
}

func NewDependencyMissingError(message string, cause error) *AppError {
	return New(TypeDependencyMissing, message, http.StatusServiceUnavailable, cause)
}

func NewDownloadFailedError(message string, cause error) *AppError {
	return New(TypeDownloadFailed, message, http.StatusBadGateway, cause)
}

func NewLoadFailedError(message string, cause error) *AppError {
	return New(TypeLoadFailed, message, http.StatusInternalServerError, cause)
}

func NewInsufficientResourcesError(message string, cause error) *AppError {
	return New(TypeInsufficientResources, message, http.StatusInsufficientStorage, cause)
}

func NewSessionRequiredError(message string) *AppError {
	return New(TypeSessionRequired, message, http.StatusConflict, nil)
}

// NewCompositeError aggregates several failures into one error. The
// individual errors stay reachable through errors.Is and errors.As.
func NewCompositeError(message string, errs []error) *AppError {
	return New(TypeComposite, message, http.StatusBadRequest, errors.Join(errs...))
}

func NewDecodeFailedError(message string, cause error) *AppError {
	return New(TypeDecodeFailed, message, http.StatusBadRequest, cause)
}

func NewEncodeFailedError(message string, cause error) *AppError {
	return New(TypeEncodeFailed, message, http.StatusInternalServerError, cause)
}

func NewUnsupportedFormatError(message string) *AppError {
	return New(TypeUnsupportedFormat, message, http.StatusUnsupportedMediaType, nil)
}

func NewFetchFailedError(message string, cause error) *AppError {
	return New(TypeFetchFailed, message, http.StatusBadGateway, cause)
}

func NewNotFoundError(message string) *AppError {
	return New(TypeNotFound, message, http.StatusNotFound, nil)
}

// IsType reports whether err or any error it wraps is an AppError of
// the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// TypeOf returns the classification of err, or an empty string when
// err carries no AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// StatusOf maps err to an HTTP status code, defaulting to 500 for
// unclassified errors.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
