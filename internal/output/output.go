// Package output delivers command output to the destinations a command selects per stream.
package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/ports"
)

// Handler receives output. In buffered mode Handle is called once per stream with the
// whole output; in realtime mode once per chunk. Finalize is called once afterwards.
type Handler interface {
	Code() domain.OutputHandlerCode
	Handle(ctx context.Context, stream domain.OutputStream, content string) error
	Finalize(ctx context.Context) error
}

// Realtime reports whether code can receive output chunk by chunk.
func Realtime(code domain.OutputHandlerCode) bool {
	switch code {
	case domain.OutputIgnore, domain.OutputNotification, domain.OutputTerminal:
		return true
	default:
		return false
	}
}

// Known reports whether code names a handler.
func Known(code domain.OutputHandlerCode) bool {
	switch code {
	case domain.OutputIgnore, domain.OutputNotification, domain.OutputTerminal,
		domain.OutputClipboard, domain.OutputCurrentFileTop, domain.OutputCurrentFileBottom:
		return true
	default:
		return false
	}
}

// Deps are the collaborators handlers write to.
type Deps struct {
	Notifier             ports.Notifier
	Clipboard            ports.Clipboard
	Stdout               io.Writer
	Stderr               io.Writer
	Fs                   afero.Fs
	Document             *domain.Document
	NotificationDuration time.Duration
}

// Set hands out one Handler per code so streams sharing a code share an instance.
type Set struct {
	deps     Deps
	handlers map[domain.OutputHandlerCode]Handler
	order    []domain.OutputHandlerCode
}

// NewSet creates an empty Set.
func NewSet(deps Deps) *Set {
	return &Set{deps: deps, handlers: make(map[domain.OutputHandlerCode]Handler)}
}

// For returns the handler for code, creating it on first use. An empty code means ignore.
func (s *Set) For(code domain.OutputHandlerCode) (Handler, error) {
	if code == "" {
		code = domain.OutputIgnore
	}
	if h, ok := s.handlers[code]; ok {
		return h, nil
	}
	h, err := build(code, s.deps)
	if err != nil {
		return nil, err
	}
	s.handlers[code] = h
	s.order = append(s.order, code)
	return h, nil
}

// Finalize finalizes every distinct handler exactly once, returning the first error.
func (s *Set) Finalize(ctx context.Context) error {
	var first error
	for _, code := range s.order {
		if err := s.handlers[code].Finalize(ctx); err != nil && first == nil {
			first = fmt.Errorf("finalize %s output: %w", code, err)
		}
	}
	return first
}

func build(code domain.OutputHandlerCode, deps Deps) (Handler, error) {
	switch code {
	case domain.OutputIgnore:
		return ignore{}, nil
	case domain.OutputNotification:
		if deps.Notifier == nil {
			return nil, fmt.Errorf("output handler %s needs a notifier", code)
		}
		return &notification{notifier: deps.Notifier, duration: deps.NotificationDuration}, nil
	case domain.OutputTerminal:
		return &terminal{stdout: deps.Stdout, stderr: deps.Stderr}, nil
	case domain.OutputClipboard:
		if deps.Clipboard == nil || !deps.Clipboard.Enabled() {
			return nil, fmt.Errorf("output handler %s: clipboard is not accessible", code)
		}
		return &clipboard{clipboard: deps.Clipboard, notifier: deps.Notifier, duration: deps.NotificationDuration}, nil
	case domain.OutputCurrentFileTop, domain.OutputCurrentFileBottom:
		if deps.Document == nil || deps.Document.Path == "" {
			return nil, fmt.Errorf("output handler %s needs an active file", code)
		}
		fs := deps.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return &currentFile{fs: fs, path: deps.Document.Path, top: code == domain.OutputCurrentFileTop}, nil
	default:
		return nil, fmt.Errorf("unknown output handler %q", code)
	}
}

// Wrap places content into wrapper at every {{output}} placeholder.
func Wrap(wrapper *string, content string) string {
	if wrapper == nil || content == "" {
		return content
	}
	return strings.ReplaceAll(*wrapper, "{{"+domain.OutputPlaceholder+"}}", content)
}
