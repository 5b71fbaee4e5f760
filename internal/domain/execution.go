package domain

import "time"

// ExecutionState tracks where an execution attempt is.
type ExecutionState string

const (
	StatePreparing     ExecutionState = "preparing"
	StateConfirming    ExecutionState = "confirming"
	StateResolvingRest ExecutionState = "resolving-rest"
	StateSpawning      ExecutionState = "spawning"
	StateRunning       ExecutionState = "running"
	StateDone          ExecutionState = "done"
	StateCancelled     ExecutionState = "cancelled"
	StateFailed        ExecutionState = "failed"
)

// OutputStream identifies stdout or stderr.
type OutputStream string

const (
	StreamStdout OutputStream = "stdout"
	StreamStderr OutputStream = "stderr"
)

// ExecutionOutcome summarises one execution attempt.
// ExitCode is nil when the process was never spawned or was killed by a signal.
type ExecutionOutcome struct {
	ID        string
	CommandID string
	Alias     string
	Command   string
	State     ExecutionState
	ExitCode  *int
	Succeeded bool
	Stdout    string
	Stderr    string
	Errors    []string
	Duration  time.Duration
}
