// Package escaper quotes resolved variable values so the target shell reads them
// back as a single literal word.
//
// Each shell dialect gets its own Escaper. cmd.exe has no quoting rule that is safe
// for arbitrary input, so it uses Passthrough: values reach cmd.exe exactly as they
// were resolved. Users targeting cmd.exe must quote variables themselves.
package escaper

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Escaper quotes a single value for a shell.
type Escaper interface {
	Name() string
	Escape(value string) string
}

// Posix quotes values for Bourne-style shells.
type Posix struct {
	lang syntax.LangVariant
	name string
}

// NewPosix returns an escaper for POSIX sh.
func NewPosix() *Posix {
	return &Posix{lang: syntax.LangPOSIX, name: "posix"}
}

// NewBash returns an escaper that may use bash-only quoting ($'...').
func NewBash() *Posix {
	return &Posix{lang: syntax.LangBash, name: "bash"}
}

func (p *Posix) Name() string { return p.name }

// Escape leaves plain words untouched and quotes anything the shell would reinterpret.
func (p *Posix) Escape(value string) string {
	if value == "" {
		return "''"
	}
	quoted, err := syntax.Quote(value, p.lang)
	if err != nil {
		// POSIX sh cannot represent some control bytes; single quotes still keep them literal.
		return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
	}
	return quoted
}

// PowerShell quotes values as verbatim single-quoted strings.
type PowerShell struct{}

func (PowerShell) Name() string { return "powershell" }

// Escape doubles every single quote, including the typographic ones PowerShell also accepts.
func (PowerShell) Escape(value string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range value {
		switch r {
		case '\'', '‘', '’', '‚', '‛':
			b.WriteRune(r)
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// Passthrough returns values unchanged.
type Passthrough struct{}

func (Passthrough) Name() string { return "none" }

func (Passthrough) Escape(value string) string { return value }

// ByName returns the escaper registered under name.
func ByName(name string) (Escaper, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "posix", "sh", "":
		return NewPosix(), nil
	case "bash", "zsh":
		return NewBash(), nil
	case "powershell", "pwsh":
		return PowerShell{}, nil
	case "none", "passthrough":
		return Passthrough{}, nil
	default:
		return nil, fmt.Errorf("unknown escaper %q", name)
	}
}
