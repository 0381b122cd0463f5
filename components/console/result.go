package console

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-admin-console/pkg/backend"
)

// FetchError describes a failed read against the backend.
type FetchError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("console: %s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("console: %s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("console: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("console: %s failed", e.Op)
}

func (e *FetchError) Unwrap() error { return e.Err }

func newFetchError(op string, err error) *FetchError {
	fe := &FetchError{Op: op, Err: err}
	var remote *backend.RemoteError
	if errors.As(err, &remote) {
		fe.Status = remote.Status
		fe.Message = remote.Message
	}
	return fe
}

// Result carries either a value or a FetchError. Rendering code matches on Ok
// instead of relying on recovered panics or ignored errors.
type Result[T any] struct {
	Value T
	Err   *FetchError
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Fail wraps a failure.
func Fail[T any](err *FetchError) Result[T] {
	return Result[T]{Err: err}
}

// IsOk reports whether the fetch succeeded.
func (r Result[T]) IsOk() bool { return r.Err == nil }

// Unwrap returns the value and the failure as a plain error.
func (r Result[T]) Unwrap() (T, error) {
	if r.Err != nil {
		return r.Value, r.Err
	}
	return r.Value, nil
}

// ValueOr returns the value or fallback on failure.
func (r Result[T]) ValueOr(fallback T) T {
	if r.Err != nil {
		return fallback
	}
	return r.Value
}
