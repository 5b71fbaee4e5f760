// Package trigger runs the commands bound to application events.
package trigger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/doeshing/shcmd/internal/application/execution"
	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/ports"
)

// DefaultSettle is how long after a triggered command finishes further events for the same
// file are still dropped. It keeps commands that write to their own file from re-triggering.
const DefaultSettle = 500 * time.Millisecond

// Executor runs one command.
type Executor interface {
	Execute(ctx context.Context, req execution.Request) (domain.ExecutionOutcome, error)
}

// Service listens for events and executes every command bound to them, one at a time.
type Service struct {
	Config     domain.Config
	Subscriber ports.EventSubscriber
	Executor   Executor
	Logger     ports.Logger
	Settle     time.Duration

	mu        sync.Mutex
	quietTill map[string]time.Time
}

func (s *Service) validate() error {
	if s.Subscriber == nil || s.Executor == nil || s.Logger == nil {
		return errors.New("trigger.Service dependencies not satisfied")
	}
	return nil
}

// Run consumes events until ctx is done or the subscription ends.
func (s *Service) Run(ctx context.Context) error {
	if err := s.validate(); err != nil {
		return err
	}
	events, err := s.Subscriber.Subscribe(ctx)
	if err != nil {
		return err
	}
	return s.Consume(ctx, events)
}

// Consume handles events from an existing subscription until ctx is done or events closes.
func (s *Service) Consume(ctx context.Context, events <-chan domain.Event) error {
	if err := s.validate(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			s.Handle(ctx, event)
		}
	}
}

// Handle executes the commands matching event and returns their outcomes.
func (s *Service) Handle(ctx context.Context, event domain.Event) []domain.ExecutionOutcome {
	if s.quiet(event) {
		s.Logger.Debug("event dropped while its file settles", map[string]interface{}{
			"type": string(event.Type), "path": event.FilePath,
		})
		return nil
	}

	var outcomes []domain.ExecutionOutcome
	for _, cmd := range Matching(s.Config, event) {
		req := execution.Request{Command: cmd, Event: &event}
		if event.IsFileEvent() && event.Type != domain.EventFileDeleted {
			req.Document = &domain.Document{Path: event.FilePath}
		}
		s.Logger.Info("event triggered command", map[string]interface{}{
			"type": string(event.Type), "command": cmd.ID, "path": event.FilePath,
		})
		outcome, err := s.Executor.Execute(ctx, req)
		if err != nil {
			s.Logger.Error("triggered command failed", err, map[string]interface{}{"command": cmd.ID})
		}
		outcomes = append(outcomes, outcome)
	}
	if len(outcomes) > 0 && event.FilePath != "" {
		s.settle(event.FilePath)
	}
	return outcomes
}

func (s *Service) settleDuration() time.Duration {
	if s.Settle <= 0 {
		return DefaultSettle
	}
	return s.Settle
}

func (s *Service) settle(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quietTill == nil {
		s.quietTill = make(map[string]time.Time)
	}
	s.quietTill[path] = time.Now().Add(s.settleDuration())
}

// quiet reports whether event happened before the file's settle deadline.
func (s *Service) quiet(event domain.Event) bool {
	if event.FilePath == "" || event.OccurredAt.IsZero() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	till, ok := s.quietTill[event.FilePath]
	return ok && event.OccurredAt.Before(till)
}

// Matching returns the commands with a binding for event, in configuration order.
// A binding pattern is a doublestar glob over the vault-relative, slash-separated path.
func Matching(cfg domain.Config, event domain.Event) []domain.ShellCommand {
	var out []domain.ShellCommand
	for _, cmd := range cfg.ShellCommands {
		for _, binding := range cmd.Events {
			if binding.Type == event.Type && matchesPattern(cfg.VaultRoot, binding.Pattern, event) {
				out = append(out, cmd)
				break
			}
		}
	}
	return out
}

func matchesPattern(vaultRoot, pattern string, event domain.Event) bool {
	if pattern == "" {
		return true
	}
	if event.FilePath == "" {
		return false
	}
	rel := event.FilePath
	if vaultRoot != "" {
		if r, err := filepath.Rel(vaultRoot, event.FilePath); err == nil {
			rel = r
		}
	}
	ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && ok
}
