// Package hotkey listens for system-wide start/stop keys.
package hotkey

import (
	"context"

	hook "github.com/robotn/gohook"
)

// Action is what a global key press asks the clicker to do.
type Action int

const (
	// ActionStart starts a click run.
	ActionStart Action = iota
	// ActionStop stops the active run.
	ActionStop
)

// Binding maps a key combination to an action.
type Binding struct {
	Keys   []string
	Action Action
}

// DefaultBindings mirror the in-window F9/F10 shortcuts.
func DefaultBindings() []Binding {
	return []Binding{
		{Keys: []string{"f9"}, Action: ActionStart},
		{Keys: []string{"f10"}, Action: ActionStop},
	}
}

// Listen registers bindings and blocks until ctx is done. fire runs on the
// hook goroutine and must not block.
func Listen(ctx context.Context, bindings []Binding, fire func(Action)) error {
	for _, b := range bindings {
		action := b.Action
		hook.Register(hook.KeyDown, b.Keys, func(hook.Event) {
			fire(action)
		})
	}
	events := hook.Start()
	done := hook.Process(events)
	select {
	case <-ctx.Done():
		hook.End()
		<-done
		return nil
	case <-done:
		return nil
	}
}
