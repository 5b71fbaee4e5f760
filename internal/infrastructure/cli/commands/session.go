package commands

import (
	"errors"
	"fmt"

	"github.com/doeshing/shcmd/internal/app"
	"github.com/doeshing/shcmd/internal/domain"
)

// Session is filled in by the root command once flags are parsed and the container is
// built. Subcommands read it when they run.
type Session struct {
	Container *app.Container
	// TerminateRunning fires the terminate control of the visible executing notice and
	// reports whether there was one.
	TerminateRunning func() bool
}

func (s *Session) container() (*app.Container, error) {
	if s == nil || s.Container == nil {
		return nil, errors.New("application container not initialised")
	}
	return s.Container, nil
}

// OutcomeError is returned when an execution attempt did not succeed. Its message has
// already been shown to the user by the notifier.
type OutcomeError struct {
	Outcome domain.ExecutionOutcome
}

func (e *OutcomeError) Error() string {
	if e.Outcome.ExitCode != nil {
		return fmt.Sprintf("%s: %s (exit code %d)", e.Outcome.CommandID, e.Outcome.State, *e.Outcome.ExitCode)
	}
	return fmt.Sprintf("%s: %s", e.Outcome.CommandID, e.Outcome.State)
}

// ExitCode maps the outcome to a process exit status.
func (e *OutcomeError) ExitCode() int {
	switch {
	case e.Outcome.State == domain.StateCancelled:
		return 130
	case e.Outcome.ExitCode != nil && *e.Outcome.ExitCode > 0:
		return *e.Outcome.ExitCode
	default:
		return 1
	}
}

func outcomeError(outcome domain.ExecutionOutcome) error {
	if outcome.Succeeded {
		return nil
	}
	return &OutcomeError{Outcome: outcome}
}
