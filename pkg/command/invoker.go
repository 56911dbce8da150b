package command

import (
	"context"
	"fmt"
	"log"
)

// Invoker executes commands and keeps two stacks: done (oldest first)
// and undone (most recently undone last).
//
// Invoker is not safe for concurrent use; callers serialize
// ExecuteCommand, Undo and Redo.
type Invoker struct {
	done   []Command
	undone []Command
}

// NewInvoker creates an invoker with empty history.
func NewInvoker() *Invoker {
	return &Invoker{
		done:   make([]Command, 0),
		undone: make([]Command, 0),
	}
}

// ExecuteCommand runs cmd against target and records it.
// Any redo history is discarded. If Execute fails nothing is recorded.
//
// A command already on the done stack is left alone and nothing is
// recorded. Re-executing an undone command clears the undone stack it
// was on, so one instance never sits on both stacks.
func (inv *Invoker) ExecuteCommand(ctx context.Context, cmd Command, target Target) error {
	if indexOf(inv.done, cmd) >= 0 {
		log.Printf("[CommandInvoker] %s already executed, ignoring", Describe(cmd))
		return nil
	}

	if err := cmd.Execute(ctx, target); err != nil {
		return fmt.Errorf("execute %s: %w", Describe(cmd), err)
	}

	inv.done = append(inv.done, cmd)
	if len(inv.undone) > 0 {
		log.Printf("[CommandInvoker] Discarding %d redoable command(s)", len(inv.undone))
	}
	clear(inv.undone)
	inv.undone = inv.undone[:0]
	return nil
}

// Undo reverts the most recently executed command.
// Returns false when there is nothing to undo.
func (inv *Invoker) Undo(target Target) bool {
	n := len(inv.done)
	if n == 0 {
		return false
	}

	cmd := inv.done[n-1]
	inv.done[n-1] = nil
	inv.done = inv.done[:n-1]

	cmd.Undo(target)
	inv.undone = append(inv.undone, cmd)
	log.Printf("[CommandInvoker] Undo %s (done=%d, undone=%d)", Describe(cmd), len(inv.done), len(inv.undone))
	return true
}

// Redo reapplies the most recently undone command.
// Returns false when there is nothing to redo.
func (inv *Invoker) Redo(target Target) bool {
	n := len(inv.undone)
	if n == 0 {
		return false
	}

	cmd := inv.undone[n-1]
	inv.undone[n-1] = nil
	inv.undone = inv.undone[:n-1]

	cmd.Redo(target)
	inv.done = append(inv.done, cmd)
	log.Printf("[CommandInvoker] Redo %s (done=%d, undone=%d)", Describe(cmd), len(inv.done), len(inv.undone))
	return true
}

// CanUndo reports whether Undo would do anything.
func (inv *Invoker) CanUndo() bool { return len(inv.done) > 0 }

// CanRedo reports whether Redo would do anything.
func (inv *Invoker) CanRedo() bool { return len(inv.undone) > 0 }

// Done returns a copy of the executed commands, oldest first.
func (inv *Invoker) Done() []Command {
	return append([]Command(nil), inv.done...)
}

// Undone returns a copy of the undone commands, most recently undone last.
func (inv *Invoker) Undone() []Command {
	return append([]Command(nil), inv.undone...)
}

// Clear drops both stacks without touching any target.
func (inv *Invoker) Clear() {
	clear(inv.done)
	clear(inv.undone)
	inv.done = inv.done[:0]
	inv.undone = inv.undone[:0]
}

func indexOf(stack []Command, cmd Command) int {
	for i, c := range stack {
		if c == cmd {
			return i
		}
	}
	return -1
}
