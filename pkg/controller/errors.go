package controller

import (
	"fmt"

	"github.com/decker502/cmdscene/pkg/command"
)

// SetupError reports the registered command whose Execute failed
// during Setup.
type SetupError struct {
	// Index is the command's position in the registry.
	Index   int
	Command command.Command
	Err     error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failed: command %d (%s): %v", e.Index, command.Describe(e.Command), e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// LoopFault reports a panic raised by a command's Update or by the
// render surface during a frame. The loop stops when one occurs.
type LoopFault struct {
	Frame uint64
	Cause any
}

func (e *LoopFault) Error() string {
	return fmt.Sprintf("frame loop fault at frame %d: %v", e.Frame, e.Cause)
}

// Unwrap returns the cause when it is an error.
func (e *LoopFault) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
