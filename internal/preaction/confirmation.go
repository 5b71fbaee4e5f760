package preaction

import (
	"context"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/parsing"
	"github.com/doeshing/shcmd/internal/ports"
)

// Confirmation asks the user whether the command may run.
type Confirmation struct {
	confirmer ports.Confirmer
}

// NewConfirmation creates a Confirmation step.
func NewConfirmation(confirmer ports.Confirmer) *Confirmation {
	return &Confirmation{confirmer: confirmer}
}

func (c *Confirmation) Name() string { return "confirmation" }

// Run shows the alias and the command. Fields resolved in the first phase are shown
// parsed, deferred ones as written.
func (c *Confirmation) Run(ctx context.Context, p *parsing.Process, _ *domain.Event) (bool, error) {
	return c.confirmer.Confirm(ctx, display(p, domain.FieldAlias), display(p, domain.FieldCommand))
}

func display(p *parsing.Process, field string) string {
	if res, ok := p.Result(field); ok && res.Succeeded {
		return res.Content()
	}
	if f, ok := p.Field(field); ok {
		return f.Template
	}
	return ""
}
