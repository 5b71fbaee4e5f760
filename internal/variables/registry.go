package variables

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/doeshing/shcmd/internal/domain"
)

// ErrUnknownVariable is returned for references to names nobody registered.
var ErrUnknownVariable = errors.New("unknown variable")

// Registry maps variable names to implementations.
// It is built once per configuration and handed to parsing; there is no global instance.
type Registry struct {
	vars     map[string]Variable
	defaults map[string]domain.VariableDefault
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		vars:     make(map[string]Variable),
		defaults: make(map[string]domain.VariableDefault),
	}
}

// NewDefaultRegistry returns a Registry holding the built-in variables plus the given
// custom variables and configured fallbacks.
func NewDefaultRegistry(cfg domain.Config) (*Registry, error) {
	r := NewRegistry()
	for _, v := range Builtins() {
		if err := r.Register(v); err != nil {
			return nil, err
		}
	}
	for _, cv := range cfg.CustomVariables {
		if err := r.Register(NewCustom(cv)); err != nil {
			return nil, err
		}
	}
	for name, d := range cfg.VariableDefaults {
		r.defaults[strings.ToLower(name)] = d
	}
	return r, nil
}

// Register adds v. Names are unique and case-insensitive.
func (r *Registry) Register(v Variable) error {
	key := strings.ToLower(v.Name())
	if _, exists := r.vars[key]; exists {
		return fmt.Errorf("variable %s is already registered", v.Name())
	}
	r.vars[key] = v
	return nil
}

// Lookup finds a variable by name.
func (r *Registry) Lookup(name string) (Variable, bool) {
	v, ok := r.vars[strings.ToLower(name)]
	return v, ok
}

// All returns every variable sorted by name.
func (r *Registry) All() []Variable {
	out := make([]Variable, 0, len(r.vars))
	for _, v := range r.vars {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Resolve validates args against the variable's parameters, checks availability and
// produces the raw, unescaped value.
func (r *Registry) Resolve(ctx context.Context, vc *Context, name string, args []string) (string, error) {
	v, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: {{%s}} does not exist", ErrUnknownVariable, name)
	}

	bound, err := bindArgs(v, args)
	if err != nil {
		return "", err
	}

	if c, ok := v.(Conditional); ok {
		if err := c.Available(vc); err != nil {
			if value, ok := r.fallback(ctx, vc, v); ok {
				return value, nil
			}
			return "", fmt.Errorf("{{%s}} is not available: %w", v.Name(), err)
		}
	}

	value, err := v.Resolve(ctx, vc, bound)
	if err != nil {
		if fallback, ok := r.fallback(ctx, vc, v); ok {
			return fallback, nil
		}
		return "", fmt.Errorf("{{%s}}: %w", v.Name(), err)
	}
	return value, nil
}

// fallback prefers a configured variable_defaults entry over the variable's own default.
// A show-errors entry disables both.
func (r *Registry) fallback(ctx context.Context, vc *Context, v Variable) (string, bool) {
	if d, ok := r.defaults[strings.ToLower(v.Name())]; ok {
		if d.Type == domain.VariableDefaultValue {
			return d.Value, true
		}
		return "", false
	}
	if d, ok := v.(Defaulted); ok {
		return d.DefaultValue(ctx, vc)
	}
	return "", false
}

func bindArgs(v Variable, args []string) ([]string, error) {
	var params []Parameter
	if p, ok := v.(Parameterized); ok {
		params = p.Parameters()
	}
	if len(params) == 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("{{%s}} does not take arguments", v.Name())
		}
		return nil, nil
	}

	bound := make([]string, 0, len(params))
	for i, p := range params {
		if p.Rest {
			var rest string
			if i < len(args) {
				rest = strings.Join(args[i:], ":")
			}
			if rest == "" && p.Required {
				return nil, fmt.Errorf("{{%s}} requires the %s argument", v.Name(), p.Name)
			}
			return append(bound, rest), nil
		}

		if i >= len(args) || args[i] == "" {
			if p.Required {
				return nil, fmt.Errorf("{{%s}} requires the %s argument (%s)", v.Name(), p.Name, describeOptions(p))
			}
			bound = append(bound, "")
			continue
		}
		if len(p.Options) > 0 && !slices.Contains(p.Options, args[i]) {
			return nil, fmt.Errorf("{{%s}}: %s must be one of %s, got %q", v.Name(), p.Name, strings.Join(p.Options, ", "), args[i])
		}
		bound = append(bound, args[i])
	}

	if len(args) > len(params) {
		return nil, fmt.Errorf("{{%s}} takes at most %d argument(s), got %d", v.Name(), len(params), len(args))
	}
	return bound, nil
}

func describeOptions(p Parameter) string {
	if len(p.Options) == 0 {
		return "any value"
	}
	return strings.Join(p.Options, " or ")
}

// Usage renders the reference syntax of v, e.g. {{file_path:absolute|relative}}.
func Usage(v Variable) string {
	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(v.Name())
	if p, ok := v.(Parameterized); ok {
		for _, param := range p.Parameters() {
			b.WriteByte(':')
			switch {
			case len(param.Options) > 0:
				b.WriteString(strings.Join(param.Options, "|"))
			default:
				b.WriteString(param.Name)
			}
		}
	}
	b.WriteString("}}")
	return b.String()
}
