// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application core (parsing, preactions, execution) talks to the outside world
// only through these interfaces. Concrete adapters live in the infrastructure layer:
// the YAML config loader, the SQLite/file stores, the terminal prompter and notifier,
// the clipboard and the event bus.
package ports

import (
	"context"
	"time"

	"github.com/doeshing/shcmd/internal/domain"
)

// ConfigProvider loads and persists configuration.
// Implementations typically read from ~/.shcmd/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
	Save(context.Context, domain.Config) error
	Path() string
}

// VariableStore keeps custom variable values keyed by the variable's stable ID.
// Writes are last-write-wins; callers do not coordinate concurrent prompts.
type VariableStore interface {
	Get(ctx context.Context, id string) (value string, ok bool, err error)
	Set(ctx context.Context, id, value string) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) (map[string]string, error)
}

// HistoryRepository persists one record per execution attempt.
type HistoryRepository interface {
	Record(ctx context.Context, rec domain.HistoryRecord) error
	Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
	Clear(ctx context.Context) error
}

// Confirmer asks the user whether a command may run.
type Confirmer interface {
	Confirm(ctx context.Context, title, command string) (bool, error)
}

// PromptForm is an interactive form whose labels and defaults are already resolved.
type PromptForm struct {
	Title       string
	Description string
	Fields      []PromptFormField
}

// PromptFormField is one input of a PromptForm.
type PromptFormField struct {
	Label        string
	Description  string
	DefaultValue string
	Required     bool
}

// PromptPresenter shows a form and waits for submission.
// ok is false when the user cancelled; values then must be ignored.
type PromptPresenter interface {
	Present(ctx context.Context, form PromptForm) (values []string, ok bool, err error)
}

// Notifier shows transient notices to the user.
type Notifier interface {
	Notify(message string, duration time.Duration)
	Error(message string, duration time.Duration)
	// Executing shows an "executing" notice offering terminate as a control.
	Executing(title string, terminate func()) ExecutingNotice
}

// ExecutingNotice is a visible "executing" notice.
type ExecutingNotice interface {
	Hide()
}

// Clipboard provides cross-platform clipboard integration.
type Clipboard interface {
	Copy(text string) error
	Read() (string, error)
	Enabled() bool
}

// EventPublisher emits application events that may trigger commands.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// EventSubscriber delivers published events until ctx is done.
type EventSubscriber interface {
	Subscribe(ctx context.Context) (<-chan domain.Event, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
