package domain

import (
	"errors"
	"fmt"
)

// ErrCommandNotFound is returned when a command ID or alias does not exist.
var ErrCommandNotFound = errors.New("shell command not found")

// ValidationError is a structural problem found before spawning a process.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// SpawnError wraps an OS-level failure to start a process.
// ArgumentListTooLong is set when the OS rejected the command for its size.
type SpawnError struct {
	Shell               string
	ArgumentListTooLong bool
	Err                 error
}

func (e *SpawnError) Error() string {
	if e.ArgumentListTooLong {
		return fmt.Sprintf("the shell command is too long to execute using %s: the operating system rejected the argument list", e.Shell)
	}
	return fmt.Sprintf("failed to start %s: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError reports a non-ignored failing exit code.
// ExitCode is nil when the process was terminated by a signal.
type ExitError struct {
	ExitCode *int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.ExitCode == nil {
		return "command was terminated before it exited"
	}
	return fmt.Sprintf("command exited with code %d", *e.ExitCode)
}
