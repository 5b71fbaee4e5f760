package preaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/parsing"
	"github.com/doeshing/shcmd/internal/ports"
)

// Prompt asks the user for values and stores them in custom variables.
type Prompt struct {
	cfg       domain.PromptConfig
	presenter ports.PromptPresenter
	store     ports.VariableStore
}

// NewPrompt creates a Prompt step.
func NewPrompt(cfg domain.PromptConfig, presenter ports.PromptPresenter, store ports.VariableStore) *Prompt {
	return &Prompt{cfg: cfg, presenter: presenter, store: store}
}

func (pr *Prompt) Name() string {
	if pr.cfg.Title != "" {
		return "prompt " + pr.cfg.Title
	}
	return "prompt"
}

// Run resolves variables in the form's texts, shows it, and writes every submitted
// value to its target variable before proceeding.
func (pr *Prompt) Run(ctx context.Context, p *parsing.Process, _ *domain.Event) (bool, error) {
	form, err := pr.form(ctx, p)
	if err != nil {
		return false, err
	}

	values, ok, err := pr.presenter.Present(ctx, form)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if len(values) != len(pr.cfg.Fields) {
		return false, fmt.Errorf("expected %d values, got %d", len(pr.cfg.Fields), len(values))
	}

	for i, f := range pr.cfg.Fields {
		if f.Required && strings.TrimSpace(values[i]) == "" {
			return false, &domain.ValidationError{Reason: fmt.Sprintf("%s is required", form.Fields[i].Label)}
		}
	}
	for i, f := range pr.cfg.Fields {
		if f.TargetVariableID == "" {
			continue
		}
		if err := pr.store.Set(ctx, f.TargetVariableID, values[i]); err != nil {
			return false, fmt.Errorf("store value of %s: %w", form.Fields[i].Label, err)
		}
	}
	return true, nil
}

// form parses labels, descriptions and defaults. Values are shown to a human, so nothing is escaped.
func (pr *Prompt) form(ctx context.Context, p *parsing.Process) (ports.PromptForm, error) {
	var errs []error
	parse := func(what, template string) string {
		res := parsing.ParseTemplate(ctx, p.Resolver(), p.Context(), template, nil)
		if !res.Succeeded {
			errs = append(errs, fmt.Errorf("%s: %s", what, res.FirstError()))
			return template
		}
		return res.Content()
	}

	form := ports.PromptForm{
		Title:       parse("title", pr.cfg.Title),
		Description: parse("description", pr.cfg.Description),
	}
	for _, f := range pr.cfg.Fields {
		form.Fields = append(form.Fields, ports.PromptFormField{
			Label:        parse("field label", f.Label),
			Description:  parse("field description", f.Description),
			DefaultValue: parse("default value of "+f.Label, f.DefaultValue),
			Required:     f.Required,
		})
	}
	return form, errors.Join(errs...)
}
