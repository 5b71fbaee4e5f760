// Package variables provides the named value providers referenced from command
// templates as {{name:arg|raw}}.
//
// A Variable only has to produce a value. Optional capabilities are expressed as
// separate interfaces and discovered by the Registry: Parameterized declares
// arguments, Conditional declares when the variable can be resolved at all, and
// Defaulted offers a fallback value when it cannot.
package variables

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/ports"
	"github.com/doeshing/shcmd/internal/shell"
)

// Variable produces a value for a template reference.
type Variable interface {
	Name() string
	Help() string
	Resolve(ctx context.Context, vc *Context, args []string) (string, error)
}

// Parameterized variables declare the arguments they accept, in order.
type Parameterized interface {
	Parameters() []Parameter
}

// Conditional variables are only resolvable in some contexts, e.g. with an active document.
type Conditional interface {
	Available(vc *Context) error
}

// Defaulted variables can supply a value when they are unavailable.
type Defaulted interface {
	DefaultValue(ctx context.Context, vc *Context) (string, bool)
}

// Parameter describes one ":"-separated argument.
// A Rest parameter takes all remaining segments joined back with ":".
type Parameter struct {
	Name     string
	Options  []string
	Required bool
	Rest     bool
}

// Context is everything a variable may read while resolving.
type Context struct {
	Document  *domain.Document
	Event     *domain.Event
	Shell     shell.Shell
	VaultRoot string

	Store     ports.VariableStore
	Clipboard ports.Clipboard
	Fs        afero.Fs

	Now    func() time.Time
	Getenv func(string) string
}

func (vc *Context) now() time.Time {
	if vc.Now != nil {
		return vc.Now()
	}
	return time.Now()
}

func (vc *Context) fs() afero.Fs {
	if vc.Fs != nil {
		return vc.Fs
	}
	return afero.NewOsFs()
}

// Func is a variable backed by a plain function.
type Func struct {
	name    string
	help    string
	params  []Parameter
	resolve func(ctx context.Context, vc *Context, args []string) (string, error)
}

// NewFunc creates a Func.
func NewFunc(name, help string, params []Parameter, resolve func(context.Context, *Context, []string) (string, error)) *Func {
	return &Func{name: name, help: help, params: params, resolve: resolve}
}

func (f *Func) Name() string            { return f.name }
func (f *Func) Help() string            { return f.help }
func (f *Func) Parameters() []Parameter { return f.params }

func (f *Func) Resolve(ctx context.Context, vc *Context, args []string) (string, error) {
	return f.resolve(ctx, vc, args)
}

// Guarded is a Func with a precondition.
type Guarded struct {
	*Func
	precondition func(vc *Context) error
}

// NewGuarded creates a Guarded variable.
func NewGuarded(f *Func, precondition func(*Context) error) *Guarded {
	return &Guarded{Func: f, precondition: precondition}
}

func (g *Guarded) Available(vc *Context) error {
	return g.precondition(vc)
}
