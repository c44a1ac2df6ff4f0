package bizapi

import "errors"

// Result is the outcome of every network operation: either Success carrying
// a value, or Failure carrying a user-facing message and an optional cause.
// A Result is immutable once built. The zero value is a Failure with an empty
// message.
type Result[T any] struct {
	value   T
	message string
	cause   error
	ok      bool
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Failure builds a failed result. An empty message falls back to the cause's
// text.
func Failure[T any](message string, cause error) Result[T] {
	if message == "" && cause != nil {
		message = cause.Error()
	}

	return Result[T]{message: message, cause: cause}
}

// FailureFrom builds a failed result from err, taking the user-facing message
// from a classified or API error when there is one.
func FailureFrom[T any](err error) Result[T] {
	return Failure[T](UserMessage(err), err)
}

// UserMessage returns the text a presentation layer should show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	classified := &ClassifiedError{}
	if errors.As(err, &classified) {
		return classified.Message
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return err.Error()
}

// IsSuccess reports whether the result holds a value.
func (r Result[T]) IsSuccess() bool {
	return r.ok
}

// IsFailure reports whether the result is a failure.
func (r Result[T]) IsFailure() bool {
	return !r.ok
}

// Value returns the value and true for a Success, or the zero value and
// false for a Failure.
func (r Result[T]) Value() (T, bool) {
	if !r.ok {
		var zero T

		return zero, false
	}

	return r.value, true
}

// Message returns the failure message; it is empty for a Success.
func (r Result[T]) Message() string {
	return r.message
}

// Cause returns the failure cause; it is nil for a Success.
func (r Result[T]) Cause() error {
	return r.cause
}

// Unwrap converts the result to the (value, error) convention. A Failure
// without a cause yields an error carrying its message.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.value, nil
	}

	var zero T

	if r.cause != nil {
		return zero, r.cause
	}

	return zero, &failureError{message: r.message}
}

// Match calls onSuccess or onFailure depending on the variant.
func (r Result[T]) Match(onSuccess func(T), onFailure func(message string, cause error)) {
	if r.ok {
		if onSuccess != nil {
			onSuccess(r.value)
		}

		return
	}

	if onFailure != nil {
		onFailure(r.message, r.cause)
	}
}

// Map transforms the value of a Success and passes a Failure through.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Result[U]{message: r.message, cause: r.cause}
	}

	return Success(fn(r.value))
}

// Bind chains an operation that can itself fail.
func Bind[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if !r.ok {
		return Result[U]{message: r.message, cause: r.cause}
	}

	return fn(r.value)
}

type failureError struct {
	message string
}

func (e *failureError) Error() string {
	return e.message
}
