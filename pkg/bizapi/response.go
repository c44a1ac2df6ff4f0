package bizapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Diagnostic prefixes for failures that have no HTTP status of their own.
const (
	transportFailureMessage = "unable to reach the server"
	parseFailureMessage     = "failed to parse server response"
)

// HandleResponse turns a raw status and body into a typed Result. 2xx bodies
// are decoded as an Envelope; any other status is classified without looking
// for a typed payload.
func HandleResponse[T any](statusCode int, body []byte) Result[T] {
	if !isSuccessStatus(statusCode) {
		return FailureFrom[T](NewClassifiedError(statusCode, body))
	}

	envelope, err := decodeEnvelope[T](body)
	if err != nil {
		return ParseFailure[T](statusCode, body, err)
	}

	if !*envelope.Success {
		return businessFailure[T](envelope.Code, envelope.Message)
	}

	if envelope.Result == nil {
		return ParseFailure[T](statusCode, body, ErrMissingResult)
	}

	return Success(*envelope.Result)
}

// HandleEmptyResponse is HandleResponse for operations without a result. An
// empty 2xx body counts as success.
func HandleEmptyResponse(statusCode int, body []byte) Result[Void] {
	if !isSuccessStatus(statusCode) {
		return FailureFrom[Void](NewClassifiedError(statusCode, body))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return Success(Void{})
	}

	envelope, err := decodeEnvelope[json.RawMessage](body)
	if err != nil {
		return ParseFailure[Void](statusCode, body, err)
	}

	if !*envelope.Success {
		return businessFailure[Void](envelope.Code, envelope.Message)
	}

	return Success(Void{})
}

// TransportFailure wraps an error raised before any response was received.
func TransportFailure[T any](err error) Result[T] {
	message := transportFailureMessage + ": " + err.Error()

	return Failure[T](message, &ClassifiedError{
		Kind:    ErrorKindServerError,
		Message: message,
		Cause:   err,
	})
}

// ParseFailure wraps a body that could not be decoded into the expected
// shape. It is reported as a server error.
func ParseFailure[T any](statusCode int, body []byte, err error) Result[T] {
	message := parseFailureMessage + ": " + err.Error()

	return Failure[T](message, &ClassifiedError{
		StatusCode: statusCode,
		Kind:       ErrorKindServerError,
		Message:    message,
		RawBody:    string(body),
		Cause:      err,
	})
}

func businessFailure[T any](code int, message string) Result[T] {
	return Failure[T](message, &APIError{Code: code, Message: message})
}

func decodeEnvelope[T any](body []byte) (*wireEnvelope[T], error) {
	var envelope wireEnvelope[T]

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	if envelope.Success == nil {
		return nil, ErrNotAnEnvelope
	}

	return &envelope, nil
}

func isSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
