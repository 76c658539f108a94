package eventbus

import (
	"errors"
	"fmt"
)

// Sentinel errors for bus operations.
var (
	// ErrEmptyTopic is returned when an event has no topic.
	ErrEmptyTopic = errors.New("eventbus: empty topic")

	// ErrNilHandler is returned by TryRegister when the handler is nil.
	ErrNilHandler = errors.New("eventbus: nil handler")
)

// HandlerError wraps an error returned by a registered handler.
type HandlerError struct {
	Err      error
	Signal   any
	Topic    string
	Handler  string
	Priority int
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("eventbus: topic %q handler %q: %v", e.Topic, e.Handler, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// AsHandlerError extracts the HandlerError from an error chain if present.
func AsHandlerError(err error) (*HandlerError, bool) {
	var he *HandlerError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
