package dispatcher

import (
	"context"
	"fmt"
	"sort"
)

// Handler processes one outbox event payload.
type Handler func(ctx context.Context, payload []byte) error

// FatalError wraps a handler error that must not be retried.
// The event moves straight to the dead state.
type FatalError struct {
	Cause error
}

func (e *FatalError) Error() string { return e.Cause.Error() }
func (e *FatalError) Unwrap() error { return e.Cause }

func Fatal(err error) error {
	return &FatalError{Cause: err}
}

// Registry maps event types to handlers.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(eventType string, h Handler) {
	r.handlers[eventType] = h
}

func (r *Registry) Lookup(eventType string) (Handler, error) {
	h, ok := r.handlers[eventType]
	if !ok {
		return nil, fmt.Errorf("no handler registered for: %q", eventType)
	}
	return h, nil
}

func (r *Registry) EventTypes() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
