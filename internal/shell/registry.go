package shell

import (
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/doeshing/shcmd/internal/domain"
)

// Registry holds every shell known to this installation.
// It is built once at startup and passed to whoever needs shell lookups.
type Registry struct {
	shells map[string]Shell
	order  []string
	custom map[string]bool
}

// NewRegistry registers the built-in shells followed by the configured custom ones.
// A custom shell may not reuse a built-in id.
func NewRegistry(custom []domain.CustomShell) (*Registry, error) {
	r := &Registry{
		shells: make(map[string]Shell),
		custom: make(map[string]bool),
	}
	for _, s := range Builtins() {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}

	var errs []error
	for _, c := range custom {
		s, err := FromCustom(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.Register(s); err != nil {
			errs = append(errs, err)
			continue
		}
		r.custom[s.ID()] = true
	}
	return r, errors.Join(errs...)
}

// Register adds a shell. IDs are case-insensitive.
func (r *Registry) Register(s Shell) error {
	key := strings.ToLower(s.ID())
	if _, exists := r.shells[key]; exists {
		return fmt.Errorf("shell %s is already registered", s.ID())
	}
	r.shells[key] = s
	r.order = append(r.order, key)
	return nil
}

// Get returns the shell with the given id.
func (r *Registry) Get(id string) (Shell, bool) {
	s, ok := r.shells[strings.ToLower(strings.TrimSpace(id))]
	return s, ok
}

// All returns shells in registration order.
func (r *Registry) All() []Shell {
	out := make([]Shell, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.shells[key])
	}
	return out
}

// Default returns the configured default shell for p, or the built-in default.
func (r *Registry) Default(p domain.Platform, cfg *domain.Config) (Shell, error) {
	id := BuiltinDefault(p)
	if cfg != nil {
		if configured := cfg.GetDefaultShellID(p); configured != "" {
			id = configured
		}
	}
	s, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("default shell %q for %s is not defined", id, p.DisplayName())
	}
	if !s.SupportsPlatform(p) {
		return nil, fmt.Errorf("default shell %s does not run on %s", s.Name(), p.DisplayName())
	}
	return s, nil
}

// ForCommand picks the command's own shell for p, falling back to Default.
func (r *Registry) ForCommand(cmd domain.ShellCommand, p domain.Platform, cfg *domain.Config) (Shell, error) {
	id := cmd.ShellIDFor(p)
	if id == "" {
		return r.Default(p, cfg)
	}
	s, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("shell %q selected by command %s is not defined", id, cmd.DisplayName())
	}
	if !s.SupportsPlatform(p) {
		return nil, fmt.Errorf("shell %s does not run on %s", s.Name(), p.DisplayName())
	}
	return s, nil
}

// Describe summarises every shell, checking whether its binary is on PATH.
func (r *Registry) Describe() []domain.ShellDescriptor {
	out := make([]domain.ShellDescriptor, 0, len(r.order))
	for _, s := range r.All() {
		_, err := exec.LookPath(s.Binary())
		out = append(out, domain.ShellDescriptor{
			ID:        s.ID(),
			Name:      s.Name(),
			Binary:    s.Binary(),
			Platforms: s.Platforms(),
			Escaper:   s.Escaper().Name(),
			Custom:    r.custom[s.ID()],
			Available: err == nil && slices.Contains(s.Platforms(), domain.CurrentPlatform()),
		})
	}
	return out
}
