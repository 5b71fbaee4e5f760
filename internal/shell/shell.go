// Package shell describes the shells commands can run in: which binary to spawn,
// how to pass the command, how paths look inside the shell and how values are quoted.
package shell

import (
	"context"
	"slices"
	"strings"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/escaper"
)

// Shell is one shell dialect.
type Shell interface {
	ID() string
	Name() string
	Binary() string
	Platforms() []domain.Platform
	SupportsPlatform(domain.Platform) bool
	// ListSeparator separates entries of PATH-like variables inside the shell.
	ListSeparator() string
	TranslateAbsolutePath(path string) string
	TranslateRelativePath(path string) string
	Escaper() escaper.Escaper
	// Wrapper is a template containing {{shell_command}}, or "" for none.
	Wrapper() string
	Args(req SpawnRequest) []string
	Spawn(ctx context.Context, req SpawnRequest) (*Process, error)
}

// PathAugmenter is implemented by shells whose environment can be given extra PATH entries.
type PathAugmenter interface {
	AugmentPath(env []string, augmentation string) []string
}

// SpawnRequest is everything needed to start a command.
// Dir is the host directory; ShellDir is the same directory as seen by the shell.
type SpawnRequest struct {
	Command  string
	Dir      string
	ShellDir string
	Env      []string
	Stdin    *string
}

// Definition is the data-driven implementation shared by built-in and custom shells.
type Definition struct {
	id            string
	name          string
	binary        string
	args          []string
	platforms     []domain.Platform
	listSeparator string
	translator    PathTranslator
	escaper       escaper.Escaper
	wrapper       string
	verbatimArgs  bool
}

var _ Shell = (*Definition)(nil)

func (d *Definition) ID() string                   { return d.id }
func (d *Definition) Name() string                 { return d.name }
func (d *Definition) Binary() string               { return d.binary }
func (d *Definition) Platforms() []domain.Platform { return slices.Clone(d.platforms) }
func (d *Definition) Escaper() escaper.Escaper     { return d.escaper }
func (d *Definition) Wrapper() string              { return d.wrapper }

// SupportsPlatform reports whether the shell can run on host platform p.
func (d *Definition) SupportsPlatform(p domain.Platform) bool {
	return slices.Contains(d.platforms, p)
}

// ListSeparator falls back to the host convention when the definition leaves it open.
func (d *Definition) ListSeparator() string {
	if d.listSeparator != "" {
		return d.listSeparator
	}
	if domain.CurrentPlatform() == domain.PlatformWindows {
		return ";"
	}
	return ":"
}

func (d *Definition) TranslateAbsolutePath(path string) string {
	return d.translator.Absolute(path)
}

func (d *Definition) TranslateRelativePath(path string) string {
	return d.translator.Relative(path)
}

// Args substitutes the command and shell-side working directory into the argument template.
func (d *Definition) Args(req SpawnRequest) []string {
	out := make([]string, 0, len(d.args))
	for _, a := range d.args {
		a = strings.ReplaceAll(a, placeholder(domain.ShellCommandPlaceholder), req.Command)
		a = strings.ReplaceAll(a, placeholder("working_directory"), req.ShellDir)
		out = append(out, a)
	}
	return out
}

// Spawn starts the shell with the request's command.
func (d *Definition) Spawn(ctx context.Context, req SpawnRequest) (*Process, error) {
	return start(ctx, d.binary, d.Args(req), req, d.verbatimArgs)
}

// augmenting adds PATH augmentation to a Definition.
type augmenting struct {
	*Definition
	pathToken string
}

var _ PathAugmenter = (*augmenting)(nil)

// AugmentPath appends the augmentation entries to PATH. When the augmentation contains the
// shell's own PATH token (for example $PATH) that token is replaced by the current value
// instead, so users can choose to prepend.
func (a *augmenting) AugmentPath(env []string, augmentation string) []string {
	entries := splitAugmentation(augmentation)
	if len(entries) == 0 {
		return env
	}
	out := slices.Clone(env)
	key, current, idx := lookupPath(out)
	joined := strings.Join(entries, a.ListSeparator())

	var value string
	switch {
	case a.pathToken != "" && strings.Contains(joined, a.pathToken):
		value = strings.ReplaceAll(joined, a.pathToken, current)
	case current == "":
		value = joined
	default:
		value = current + a.ListSeparator() + joined
	}

	if idx >= 0 {
		out[idx] = key + "=" + value
		return out
	}
	return append(out, key+"="+value)
}

func splitAugmentation(s string) []string {
	var entries []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}
	return entries
}

// lookupPath finds PATH case-insensitively since Windows spells it Path.
func lookupPath(env []string) (key, value string, idx int) {
	for i, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.EqualFold(k, "PATH") {
			return k, v, i
		}
	}
	return "PATH", "", -1
}

func placeholder(name string) string {
	return "{{" + name + "}}"
}
