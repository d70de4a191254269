package errors

import "fmt"

// ErrorType classifies failures so retry logic can branch on them
type ErrorType string

const (
	ErrorTypeBrowser    ErrorType = "browser"
	ErrorTypeNavigation ErrorType = "navigation"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeCapture    ErrorType = "capture"
	ErrorTypeOCR        ErrorType = "ocr"
	ErrorTypeCaption    ErrorType = "caption"
	ErrorTypeExport     ErrorType = "export"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents an operation failure with type information
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap creates a typed error around an underlying cause
func Wrap(errorType ErrorType, message string, err error) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNavigation, ErrorTypeRateLimit, ErrorTypeCaption:
		return true
	case ErrorTypeBrowser, ErrorTypeCapture, ErrorTypeOCR, ErrorTypeExport, ErrorTypeNotFound:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error.
// The caption backend speaks plain HTTP, so the usual rules apply.
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504:
		return true
	case 400, 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
