package bizapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind is the coarse classification of a failed call. Callers only need
// to tell "fix input" from "sign in again" from "retry".
type ErrorKind int

// Error kinds. The zero value is ErrorKindUnknown.
const (
	ErrorKindUnknown ErrorKind = iota
	ErrorKindBadRequest
	ErrorKindUnauthorized
	ErrorKindForbidden
	ErrorKindNotFound
	ErrorKindServerError
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindBadRequest:
		return "BadRequest"
	case ErrorKindUnauthorized:
		return "Unauthorized"
	case ErrorKindForbidden:
		return "Forbidden"
	case ErrorKindNotFound:
		return "NotFound"
	case ErrorKindServerError:
		return "ServerError"
	default:
		return "Unknown"
	}
}

// User-facing messages per error kind.
const (
	MessageBadRequest   = "invalid request data, please check and retry"
	MessageUnauthorized = "session expired, please sign in again"
	MessageForbidden    = "insufficient permission for this action"
	MessageNotFound     = "requested resource not found"
	MessageServerError  = "server error, please retry later"
)

// Static errors for err113 compliance.
var (
	ErrInvalidPageSize     = errors.New("page size must be at least 1")
	ErrInvalidPageNumber   = errors.New("page number must be at least 1")
	ErrRegistryInitialized = errors.New("pagination registry already initialized")
	ErrSettingsNotFound    = errors.New("pagination settings not found")
	ErrMissingResult       = errors.New("response reported success without a result")
	ErrNotAnEnvelope       = errors.New("response body is not a response envelope")
	ErrCircuitBreakerOpen  = errors.New("circuit breaker is open")
	ErrInterceptorPanic    = errors.New("interceptor panicked")
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
)

// Classify maps an HTTP status code to its error kind. It is total and pure.
func Classify(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusBadRequest:
		return ErrorKindBadRequest
	case http.StatusUnauthorized:
		return ErrorKindUnauthorized
	case http.StatusForbidden:
		return ErrorKindForbidden
	case http.StatusNotFound:
		return ErrorKindNotFound
	case http.StatusInternalServerError:
		return ErrorKindServerError
	default:
		return ErrorKindUnknown
	}
}

// MessageFor returns the user-facing message for kind. statusCode is only
// used for ErrorKindUnknown, whose message embeds it.
func MessageFor(kind ErrorKind, statusCode int) string {
	switch kind {
	case ErrorKindBadRequest:
		return MessageBadRequest
	case ErrorKindUnauthorized:
		return MessageUnauthorized
	case ErrorKindForbidden:
		return MessageForbidden
	case ErrorKindNotFound:
		return MessageNotFound
	case ErrorKindServerError:
		return MessageServerError
	default:
		return fmt.Sprintf("unexpected server response (status %d)", statusCode)
	}
}

// ClassifiedError is a failed call normalized into an error kind. It is the
// cause carried by a Failure for transport, status and decoding failures.
type ClassifiedError struct {
	StatusCode int
	Kind       ErrorKind
	// Message is safe to show to end users.
	Message string
	// Detail is diagnostic text extracted from the body or the failure.
	Detail  string
	RawBody string
	Cause   error
}

// NewClassifiedError builds the error for a non-success status and body.
func NewClassifiedError(statusCode int, body []byte) *ClassifiedError {
	kind := Classify(statusCode)

	return &ClassifiedError{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    MessageFor(kind, statusCode),
		Detail:     ExtractErrorMessage(body),
		RawBody:    string(body),
	}
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "%s", e.Kind)

	if e.StatusCode != 0 {
		fmt.Fprintf(&builder, " (status %d)", e.StatusCode)
	}

	builder.WriteString(": ")
	builder.WriteString(e.Message)

	if e.Detail != "" {
		builder.WriteString(": ")
		builder.WriteString(e.Detail)
	}

	return builder.String()
}

// Unwrap returns the underlying transport or decoding error, if any.
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// APIError is a business failure the server reported inside a 2xx envelope.
type APIError struct {
	Code    int    `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}

// Kind classifies the envelope code with the status table.
func (e *APIError) Kind() ErrorKind {
	return Classify(e.Code)
}

// KindOf returns the kind of err, looking through wrapping. Errors that did
// not come from a classified response report ErrorKindUnknown.
func KindOf(err error) ErrorKind {
	classified := &ClassifiedError{}
	if errors.As(err, &classified) {
		return classified.Kind
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}

	return ErrorKindUnknown
}

// IsBadRequest checks if the error is a bad request error.
func IsBadRequest(err error) bool {
	return KindOf(err) == ErrorKindBadRequest
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return KindOf(err) == ErrorKindUnauthorized
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return KindOf(err) == ErrorKindForbidden
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrorKindNotFound
}

// IsServerError checks if the error is a server error, including transport
// and decoding failures.
func IsServerError(err error) bool {
	return KindOf(err) == ErrorKindServerError
}

// ExtractErrorMessage pulls a diagnostic message out of an error body. A JSON
// object with a "message" (or "error") string wins; anything else degrades to
// the trimmed raw text.
func ExtractErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	err := json.Unmarshal([]byte(trimmed), &payload)
	if err != nil {
		return trimmed
	}

	if payload.Message != "" {
		return payload.Message
	}

	if payload.Error != "" {
		return payload.Error
	}

	return trimmed
}
