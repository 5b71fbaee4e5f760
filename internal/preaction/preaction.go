// Package preaction runs the steps that must succeed before a command's final parse:
// an optional confirmation followed by the command's configured preactions.
package preaction

import (
	"context"
	"fmt"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/parsing"
	"github.com/doeshing/shcmd/internal/ports"
)

// Preaction is one step. Returning false without an error means the user cancelled.
// Side effects must be complete before Run returns true.
type Preaction interface {
	Name() string
	Run(ctx context.Context, p *parsing.Process, event *domain.Event) (bool, error)
}

// Pipeline runs preactions strictly in order and stops at the first that does not proceed.
type Pipeline []Preaction

// Run reports whether every step agreed to proceed.
func (pl Pipeline) Run(ctx context.Context, p *parsing.Process, event *domain.Event) (bool, error) {
	for _, step := range pl {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		proceed, err := step.Run(ctx, p, event)
		if err != nil {
			return false, fmt.Errorf("%s: %w", step.Name(), err)
		}
		if !proceed {
			return false, nil
		}
	}
	return true, nil
}

// Deps are the collaborators preactions talk to.
type Deps struct {
	Confirmer ports.Confirmer
	Presenter ports.PromptPresenter
	Store     ports.VariableStore
}

// Build assembles the pipeline for cmd. Confirmation, when enabled, always runs first.
// Disabled preactions are skipped.
func Build(cmd domain.ShellCommand, deps Deps) (Pipeline, error) {
	var pl Pipeline
	if cmd.ConfirmExecution {
		if deps.Confirmer == nil {
			return nil, fmt.Errorf("command %s asks for confirmation but no confirmer is available", cmd.DisplayName())
		}
		pl = append(pl, NewConfirmation(deps.Confirmer))
	}

	for i, cfg := range cmd.Preactions {
		if !cfg.IsEnabled() {
			continue
		}
		switch cfg.Type {
		case domain.PreactionPrompt:
			if cfg.Prompt == nil {
				return nil, fmt.Errorf("preaction %d of %s has no prompt configured", i+1, cmd.DisplayName())
			}
			if deps.Presenter == nil || deps.Store == nil {
				return nil, fmt.Errorf("command %s uses a prompt but prompts are not available", cmd.DisplayName())
			}
			pl = append(pl, NewPrompt(*cfg.Prompt, deps.Presenter, deps.Store))
		default:
			return nil, fmt.Errorf("preaction %d of %s has unknown type %q", i+1, cmd.DisplayName(), cfg.Type)
		}
	}
	return pl, nil
}
