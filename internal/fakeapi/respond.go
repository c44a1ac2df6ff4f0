package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// statusError is answered with a non-2xx status and a failure envelope.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%d: %s", e.status, e.message)
}

func badRequest(format string, args ...interface{}) error {
	return &statusError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

func notFound(kind, id string) error {
	return &statusError{status: http.StatusNotFound, message: fmt.Sprintf("%s %s not found", kind, id)}
}

// businessError is answered with HTTP 200 and "success": false.
type businessError struct {
	code    int
	message string
}

func (e *businessError) Error() string {
	return fmt.Sprintf("%d: %s", e.code, e.message)
}

func conflict(format string, args ...interface{}) error {
	return &businessError{code: http.StatusConflict, message: fmt.Sprintf(format, args...)}
}

func (s *Server) wrap(handler handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := handler(w, r)
		if err == nil {
			return
		}

		business := &businessError{}
		if errors.As(err, &business) {
			writeJSON(w, http.StatusOK, bizapi.NewFailureEnvelope(business.code, business.message))

			return
		}

		status := &statusError{}
		if errors.As(err, &status) {
			writeFailure(w, status.status, status.message)

			return
		}

		writeFailure(w, http.StatusInternalServerError, err.Error())
	}
}

func writeEnvelope[T any](w http.ResponseWriter, status int, message string, result T) {
	writeJSON(w, status, bizapi.NewEnvelope(status, message, result))
}

func writeVoid(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, bizapi.Envelope[bizapi.Void]{
		Code:    http.StatusOK,
		Message: message,
		Success: true,
	})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, bizapi.NewFailureEnvelope(status, message))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(payload)
}

func decodeBody(r *http.Request, target interface{}) error {
	decoder := json.NewDecoder(r.Body)

	err := decoder.Decode(target)
	if err != nil {
		return badRequest("malformed request body: %v", err)
	}

	return nil
}
