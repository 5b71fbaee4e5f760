// Package execution runs shell commands: first-phase parsing, preactions, final parsing,
// validation, spawning, output handling and error classification.
package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/parsing"
	"github.com/doeshing/shcmd/internal/ports"
	"github.com/doeshing/shcmd/internal/preaction"
	"github.com/doeshing/shcmd/internal/shell"
	"github.com/doeshing/shcmd/internal/variables"
)

// Service orchestrates one execution attempt end-to-end.
type Service struct {
	Config    domain.Config
	Shells    *shell.Registry
	Variables *variables.Registry
	Store     ports.VariableStore
	History   ports.HistoryRepository
	Confirmer ports.Confirmer
	Presenter ports.PromptPresenter
	Notifier  ports.Notifier
	Clipboard ports.Clipboard
	Logger    ports.Logger
	Fs        afero.Fs
	Stdout    io.Writer
	Stderr    io.Writer
	Preparsed *PreparsedCache

	// Environ and Getenv default to the os package.
	Environ  func() []string
	Getenv   func(string) string
	Platform domain.Platform
}

// Request names the command and the context it runs in.
type Request struct {
	Command  domain.ShellCommand
	Document *domain.Document
	Event    *domain.Event
}

func (s *Service) validate() error {
	if s.Shells == nil || s.Variables == nil || s.Notifier == nil || s.Logger == nil {
		return errors.New("execution.Service dependencies not satisfied")
	}
	return nil
}

func (s *Service) platform() domain.Platform {
	if s.Platform == "" {
		return domain.CurrentPlatform()
	}
	return s.Platform
}

func (s *Service) fs() afero.Fs {
	if s.Fs == nil {
		return afero.NewOsFs()
	}
	return s.Fs
}

func (s *Service) environ() []string {
	if s.Environ == nil {
		return os.Environ()
	}
	return s.Environ()
}

func (s *Service) errorDuration() time.Duration {
	return time.Duration(s.Config.GetErrorMessageDurationSeconds()) * time.Second
}

func (s *Service) notificationDuration() time.Duration {
	return time.Duration(s.Config.GetNotificationMessageDurationSeconds()) * time.Second
}

// Preview runs the first parsing phase and keeps the process for the next Execute of the
// same command. The returned results are for display.
func (s *Service) Preview(ctx context.Context, req Request) (map[string]domain.ParsingResult, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	sh, err := s.Shells.ForCommand(req.Command, s.platform(), &s.Config)
	if err != nil {
		return nil, err
	}

	p := s.newProcess(req, sh)
	ok, err := p.Process(ctx)
	if err != nil {
		return nil, err
	}
	if ok && s.Preparsed != nil {
		s.Preparsed.Put(req.Command.ID, p)
	}
	return p.Results(), nil
}

// Execute runs the command. Cancellation and failures reported to the user are part
// of the outcome; the error is reserved for unexpected failures.
func (s *Service) Execute(ctx context.Context, req Request) (outcome domain.ExecutionOutcome, err error) {
	if err := s.validate(); err != nil {
		return domain.ExecutionOutcome{}, err
	}

	started := time.Now()
	outcome = domain.ExecutionOutcome{
		ID:        ulid.Make().String(),
		CommandID: req.Command.ID,
		Alias:     req.Command.Alias,
		State:     domain.StatePreparing,
	}
	var shellID string

	defer func() {
		if s.Preparsed != nil {
			s.Preparsed.Clear()
		}
		outcome.Duration = time.Since(started)
		s.record(ctx, outcome, shellID, started)
	}()

	sh, err := s.Shells.ForCommand(req.Command, s.platform(), &s.Config)
	if err != nil {
		s.fail(&outcome, err.Error())
		return outcome, nil
	}
	shellID = sh.ID()

	// Phase one, unless a preview already did it.
	p, cached := s.takePreparsed(req.Command.ID)
	if !cached {
		p = s.newProcess(req, sh)
		ok, err := p.Process(ctx)
		if err != nil {
			return s.abort(&outcome, err)
		}
		if !ok {
			s.fail(&outcome, p.Errors()...)
			return outcome, nil
		}
	}
	outcome.Command = displayContent(p, domain.FieldCommand)
	if alias, ok := p.Result(domain.FieldAlias); ok && alias.Succeeded {
		outcome.Alias = alias.Content()
	}

	pipeline, err := preaction.Build(req.Command, preaction.Deps{
		Confirmer: s.Confirmer,
		Presenter: s.Presenter,
		Store:     s.Store,
	})
	if err != nil {
		s.fail(&outcome, err.Error())
		return outcome, nil
	}
	if len(pipeline) > 0 {
		outcome.State = domain.StateConfirming
	}
	proceed, err := pipeline.Run(ctx, p, req.Event)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			outcome.State = domain.StateCancelled
			return outcome, nil
		}
		s.fail(&outcome, err.Error())
		return outcome, nil
	}
	if !proceed {
		s.Logger.Debug("execution cancelled by preaction", map[string]interface{}{"command": req.Command.ID})
		outcome.State = domain.StateCancelled
		return outcome, nil
	}

	outcome.State = domain.StateResolvingRest
	ok, err := p.ProcessRest(ctx)
	if err != nil {
		return s.abort(&outcome, err)
	}
	if !ok {
		s.fail(&outcome, p.Errors()...)
		return outcome, nil
	}

	result := assemble(p)
	outcome.Command = result.UnwrappedCommand
	outcome.Alias = result.Alias

	if err := s.validateCommand(req.Command, result); err != nil {
		s.fail(&outcome, err.Error())
		return outcome, nil
	}
	hostDir, err := s.validateWorkingDirectory()
	if err != nil {
		s.fail(&outcome, err.Error())
		return outcome, nil
	}

	return s.run(ctx, req, sh, result, hostDir, &outcome)
}

func (s *Service) takePreparsed(commandID string) (*parsing.Process, bool) {
	if s.Preparsed == nil {
		return nil, false
	}
	p, ok := s.Preparsed.Take(commandID)
	if !ok || p.State() != parsing.StateFirstPassDone {
		return nil, false
	}
	return p, true
}

// fail marks the outcome failed and shows the first message prominently.
func (s *Service) fail(outcome *domain.ExecutionOutcome, messages ...string) {
	outcome.State = domain.StateFailed
	outcome.Succeeded = false
	outcome.Errors = append(outcome.Errors, messages...)
	if len(messages) > 0 {
		s.Notifier.Error(messages[0], s.errorDuration())
	}
	s.Logger.Debug("execution failed", map[string]interface{}{
		"command": outcome.CommandID,
		"errors":  messages,
	})
}

// abort handles context errors during parsing.
func (s *Service) abort(outcome *domain.ExecutionOutcome, err error) (domain.ExecutionOutcome, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		outcome.State = domain.StateCancelled
		return *outcome, nil
	}
	outcome.State = domain.StateFailed
	return *outcome, err
}

// validateCommand rejects empty commands, telling apart "not defined at all" from
// "defined only for other platforms".
func (s *Service) validateCommand(cmd domain.ShellCommand, result domain.ShellCommandParsingResult) error {
	if strings.TrimSpace(result.UnwrappedCommand) != "" {
		return nil
	}
	if !cmd.HasAnyCommand() {
		return &domain.ValidationError{Reason: "The shell command is empty."}
	}
	defined := cmd.DefinedPlatforms()
	if strings.TrimSpace(cmd.CommandFor(s.platform())) == "" && len(defined) > 0 {
		names := make([]string, 0, len(defined))
		for _, p := range defined {
			names = append(names, p.DisplayName())
		}
		return &domain.ValidationError{Reason: fmt.Sprintf(
			"The shell command is not defined for %s. It is only defined for %s.",
			s.platform().DisplayName(), strings.Join(names, ", "),
		)}
	}
	return &domain.ValidationError{Reason: "The shell command is empty after resolving its variables."}
}

// validateWorkingDirectory resolves the host working directory and checks it is a directory.
func (s *Service) validateWorkingDirectory() (string, error) {
	dir := shell.HostWorkingDirectory(s.Config.WorkingDirectory, s.Config.VaultRoot)
	if dir == "" {
		return "", &domain.ValidationError{Reason: "No working directory is configured and the vault root is unknown."}
	}
	info, err := s.fs().Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &domain.ValidationError{Reason: fmt.Sprintf("Working directory does not exist: %s", dir)}
		}
		return "", &domain.ValidationError{Reason: fmt.Sprintf("Working directory cannot be accessed: %s: %v", dir, err)}
	}
	if !info.IsDir() {
		return "", &domain.ValidationError{Reason: fmt.Sprintf("Working directory exists but is not a directory: %s", dir)}
	}
	return dir, nil
}

func (s *Service) record(ctx context.Context, outcome domain.ExecutionOutcome, shellID string, started time.Time) {
	if s.History == nil {
		return
	}
	rec := domain.HistoryRecord{
		ID:              outcome.ID,
		Timestamp:       started,
		CommandID:       outcome.CommandID,
		Alias:           outcome.Alias,
		Command:         outcome.Command,
		Shell:           shellID,
		State:           outcome.State,
		Success:         outcome.Succeeded,
		ExitCode:        outcome.ExitCode,
		ExecutionTimeMS: outcome.Duration.Milliseconds(),
	}
	if err := s.History.Record(context.WithoutCancel(ctx), rec); err != nil {
		s.Logger.Warn("failed to record history", map[string]interface{}{"error": err.Error()})
	}
}
