package completion

import (
	"runtime/debug"
)

// Error is the terminal failure of Complete
type Error struct {
	Message     string
	StatusCode  int
	IsRateLimit bool
	RetryCount  int
	Kind        Kind

	// Cause is the last upstream error
	Cause error

	stack []byte
}

func newError(message string, status int, kind Kind, retries int, cause error) *Error {
	return &Error{
		Message:     message,
		StatusCode:  status,
		IsRateLimit: kind == KindRateLimited,
		RetryCount:  retries,
		Kind:        kind,
		Cause:       cause,
		stack:       debug.Stack(),
	}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Stack returns the goroutine stack captured when the error was created
func (e *Error) Stack() string {
	return string(e.stack)
}
