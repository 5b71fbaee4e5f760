package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/doeshing/shcmd/internal/infrastructure/cli/helpers"
	"github.com/doeshing/shcmd/internal/ports"
)

// Prompter implements ports.Confirmer and ports.PromptPresenter on a line-based terminal.
// End of input counts as a cancellation.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	start sync.Once
	lines chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewPrompter constructs a prompter, defaulting to stdin and stderr.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return &Prompter{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan lineResult),
	}
}

var titleColor = color.New(color.Bold)

// Confirm asks whether command may run.
func (p *Prompter) Confirm(ctx context.Context, title, command string) (bool, error) {
	titleColor.Fprintf(p.out, "Execute %s?\n", title)
	fmt.Fprintf(p.out, "  %s\n", command)
	fmt.Fprintf(p.out, "Continue? [%s]: ", helpers.YesNoLabel(false))

	line, err := p.readLine(ctx)
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return helpers.IsAffirmative(line), nil
}

// Present asks for each field in turn. An empty answer takes the field default; required
// fields are asked again until they have a value.
func (p *Prompter) Present(ctx context.Context, form ports.PromptForm) ([]string, bool, error) {
	if form.Title != "" {
		titleColor.Fprintln(p.out, form.Title)
	}
	if form.Description != "" {
		fmt.Fprintln(p.out, form.Description)
	}

	values := make([]string, len(form.Fields))
	for i, field := range form.Fields {
		for {
			p.askField(field)
			line, err := p.readLine(ctx)
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(p.out)
				return nil, false, nil
			}
			if err != nil {
				return nil, false, err
			}
			if line == "" {
				line = field.DefaultValue
			}
			if field.Required && strings.TrimSpace(line) == "" {
				fmt.Fprintf(p.out, "%s is required.\n", field.Label)
				continue
			}
			values[i] = line
			break
		}
	}
	return values, true, nil
}

func (p *Prompter) askField(field ports.PromptFormField) {
	if field.Description != "" {
		color.New(color.Faint).Fprintln(p.out, field.Description)
	}
	label := field.Label
	if field.Required {
		label += " (required)"
	}
	if field.DefaultValue != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, field.DefaultValue)
		return
	}
	fmt.Fprintf(p.out, "%s: ", label)
}

// readLine returns the next input line without its line ending. A read blocked on the
// terminal is abandoned when ctx is done; the line is then delivered to the next call.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	p.start.Do(func() {
		go func() {
			defer close(p.lines)
			for {
				line, err := p.in.ReadString('\n')
				if err != nil && line != "" {
					err = nil
				}
				p.lines <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
				if err != nil {
					return
				}
			}
		}()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}

var (
	_ ports.Confirmer       = (*Prompter)(nil)
	_ ports.PromptPresenter = (*Prompter)(nil)
)
