// Package command defines reversible scene commands and the invoker
// that keeps their linear undo/redo history.
package command

import (
	"context"
	"fmt"

	"github.com/decker502/cmdscene/pkg/scene"
)

// Target is the container a command's object is added to or removed from.
// *scene.Scene implements it.
type Target interface {
	Add(obj *scene.Object)
	Remove(obj *scene.Object)
	Contains(obj *scene.Object) bool
}

var _ Target = (*scene.Scene)(nil)

// Command is a reversible unit of scene mutation.
//
// A command owns at most one object at a time: none before Execute and
// after Undo, one after Execute and Redo.
type Command interface {
	// Execute creates the command's object and adds it to target.
	// It may block on a data fetch; ctx bounds that wait.
	Execute(ctx context.Context, target Target) error

	// Update advances the owned object's animation by one frame.
	// It is a no-op when no object is owned.
	Update()

	// Undo removes the owned object from target. No-op when already undone.
	Undo(target Target)

	// Redo re-adds the object removed by Undo. No-op when already applied.
	Redo(target Target)
}

// Describe returns a short label for cmd, for logs.
func Describe(cmd Command) string {
	if s, ok := cmd.(fmt.Stringer); ok {
		return s.String()
	}
	return "command"
}
