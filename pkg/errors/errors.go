package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeAPIEnvelope ErrorType = "api_envelope"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information. URL and Body carry
// the request context needed for the final log line before a run aborts.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Body    string
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	if e.URL != "" {
		s += fmt.Sprintf(" [%s]", e.URL)
	}
	if e.Body != "" {
		s += fmt.Sprintf(": %s", e.Body)
	}
	return s
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	case ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeParsing, ErrorTypeAPIEnvelope:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500
	}
}
