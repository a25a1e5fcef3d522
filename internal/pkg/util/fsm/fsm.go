// Package fsm holds helpers around github.com/looplab/fsm.
package fsm

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// WrapEvent adapts a callback returning an error to fsm.Callback. A non-nil
// error is stored on the event and returned by fsm.Event.
func WrapEvent(fn func(ctx context.Context, event *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Err = err
		}
	}
}

// EnterState is the callback key fired after entering state.
func EnterState(state string) string {
	return "enter_" + state
}

// BeforeEvent is the callback key fired before event; it may cancel it.
func BeforeEvent(event string) string {
	return "before_" + event
}

// IgnoreNoTransition drops fsm.NoTransitionError, returned when an event
// leaves the machine in the state it already was in.
func IgnoreNoTransition(err error) error {
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}
	return err
}
