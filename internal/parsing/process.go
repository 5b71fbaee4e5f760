package parsing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/escaper"
	"github.com/doeshing/shcmd/internal/variables"
)

// ErrInvalidState is returned when a phase is run out of order or twice.
var ErrInvalidState = errors.New("parsing process is not in a state that allows this step")

// Resolver produces raw variable values. *variables.Registry implements it.
type Resolver interface {
	Resolve(ctx context.Context, vc *variables.Context, name string, args []string) (string, error)
}

// State is the lifecycle position of a Process.
type State int

const (
	StateCreated State = iota
	StateFirstPassDone
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateFirstPassDone:
		return "first-pass-done"
	case StateComplete:
		return "complete"
	default:
		return "failed"
	}
}

// Field is one named template handled by a Process.
type Field struct {
	Name     string
	Template string
	// Escaper quotes resolved values; nil inserts them unchanged.
	Escaper escaper.Escaper
	// Deferred fields need values that a preaction supplies, so they are only
	// resolved by ProcessRest.
	Deferred bool
	// Passthrough names are placeholders filled in later, not variables.
	Passthrough []string
}

// Process resolves a fixed set of fields in two phases. It serves one execution
// attempt and cannot be replayed.
type Process struct {
	resolver Resolver
	vc       *variables.Context
	fields   []Field

	mu       sync.Mutex
	state    State
	results  map[string]domain.ParsingResult
	consumed map[string]bool
}

// New creates a Process in StateCreated.
func New(resolver Resolver, vc *variables.Context, fields ...Field) *Process {
	return &Process{
		resolver: resolver,
		vc:       vc,
		fields:   fields,
		results:  make(map[string]domain.ParsingResult, len(fields)),
		consumed: make(map[string]bool, len(fields)),
	}
}

// Process resolves every field that is not deferred. It reports whether all of them
// succeeded; on failure the process is finished and partial results stay readable.
func (p *Process) Process(ctx context.Context) (bool, error) {
	return p.run(ctx, StateCreated, StateFirstPassDone, func(f Field) bool { return !f.Deferred })
}

// ProcessRest resolves every field the first phase left untouched.
func (p *Process) ProcessRest(ctx context.Context) (bool, error) {
	return p.run(ctx, StateFirstPassDone, StateComplete, func(Field) bool { return true })
}

func (p *Process) run(ctx context.Context, from, to State, include func(Field) bool) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != from {
		return false, fmt.Errorf("%w: %s", ErrInvalidState, p.state)
	}

	ok := true
	for _, f := range p.fields {
		if p.consumed[f.Name] || !include(f) {
			continue
		}
		if err := ctx.Err(); err != nil {
			p.state = StateFailed
			return false, err
		}
		res := parseField(ctx, p.resolver, p.vc, f)
		p.results[f.Name] = res
		p.consumed[f.Name] = true
		ok = ok && res.Succeeded
	}

	if ok {
		p.state = to
	} else {
		p.state = StateFailed
	}
	return ok, nil
}

// State returns the current lifecycle state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Result returns the result for a field that has been resolved.
func (p *Process) Result(name string) (domain.ParsingResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	res, ok := p.results[name]
	return res, ok
}

// Results returns a copy of all results so far.
func (p *Process) Results() map[string]domain.ParsingResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]domain.ParsingResult, len(p.results))
	for k, v := range p.results {
		out[k] = v
	}
	return out
}

// Errors returns every error message in field order.
func (p *Process) Errors() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, f := range p.fields {
		out = append(out, p.results[f.Name].ErrorMessages...)
	}
	return out
}

// Field returns the definition of a field.
func (p *Process) Field(name string) (Field, bool) {
	i := slices.IndexFunc(p.fields, func(f Field) bool { return f.Name == name })
	if i < 0 {
		return Field{}, false
	}
	return p.fields[i], true
}

// Context returns the variable context the process resolves against.
func (p *Process) Context() *variables.Context { return p.vc }

// Resolver returns the resolver the process uses.
func (p *Process) Resolver() Resolver { return p.resolver }

// ParseTemplate resolves a single template outside of any Process, for prompt labels
// and default values.
func ParseTemplate(ctx context.Context, resolver Resolver, vc *variables.Context, template string, esc escaper.Escaper) domain.ParsingResult {
	return parseField(ctx, resolver, vc, Field{Template: template, Escaper: esc})
}

func parseField(ctx context.Context, resolver Resolver, vc *variables.Context, f Field) domain.ParsingResult {
	res := domain.ParsingResult{OriginalContent: f.Template}

	var b strings.Builder
	last := 0
	for _, ref := range Scan(f.Template) {
		b.WriteString(f.Template[last:ref.Start])
		last = ref.End

		if slices.Contains(f.Passthrough, ref.Name) {
			b.WriteString(ref.Text(f.Template))
			continue
		}

		value, err := resolveReference(ctx, resolver, vc, ref, f.Escaper)
		if err != nil {
			res.ErrorMessages = append(res.ErrorMessages, err.Error())
			continue
		}
		res.CountParsedVariables++
		b.WriteString(value)
	}
	b.WriteString(f.Template[last:])

	if len(res.ErrorMessages) > 0 {
		return res
	}
	parsed := b.String()
	res.Succeeded = true
	res.ParsedContent = &parsed
	return res
}

func resolveReference(ctx context.Context, resolver Resolver, vc *variables.Context, ref Reference, esc escaper.Escaper) (string, error) {
	switch ref.Control {
	case "", ControlEscape, ControlRaw:
	default:
		return "", fmt.Errorf("{{%s}}: unknown escape control %q, use %s or %s", ref.Name, ref.Control, ControlRaw, ControlEscape)
	}

	value, err := resolver.Resolve(ctx, vc, ref.Name, ref.Args)
	if err != nil {
		return "", err
	}
	if ref.Raw() || esc == nil {
		return value, nil
	}
	return esc.Escape(value), nil
}
