package variables

import (
	"context"
	"errors"
	"fmt"

	"github.com/doeshing/shcmd/internal/domain"
)

// CustomPrefix distinguishes user-defined variables from built-in ones.
const CustomPrefix = "_"

// Custom is a user-defined variable. Its value lives in the variable store under the
// variable's ID, so renaming the variable keeps its value.
type Custom struct {
	def domain.CustomVariable
}

// NewCustom wraps a configured custom variable.
func NewCustom(def domain.CustomVariable) *Custom {
	return &Custom{def: def}
}

func (c *Custom) Name() string { return CustomPrefix + c.def.Name }

// ID is the store key.
func (c *Custom) ID() string { return c.def.ID }

func (c *Custom) Help() string {
	if c.def.Description != "" {
		return c.def.Description
	}
	return "Custom variable."
}

func (c *Custom) Available(vc *Context) error {
	if vc.Store == nil {
		return errors.New("variable storage is not accessible")
	}
	return nil
}

func (c *Custom) Resolve(ctx context.Context, vc *Context, _ []string) (string, error) {
	value, ok, err := vc.Store.Get(ctx, c.def.ID)
	if err != nil {
		return "", fmt.Errorf("read value: %w", err)
	}
	if !ok {
		return "", errors.New("no value has been set yet")
	}
	return value, nil
}

// DefaultValue is the configured default_value, when there is one.
func (c *Custom) DefaultValue(context.Context, *Context) (string, bool) {
	return c.def.DefaultValue, c.def.DefaultValue != ""
}
