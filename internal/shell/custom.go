package shell

import (
	"fmt"
	"strings"

	"github.com/google/shlex"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/escaper"
)

// FromCustom builds a Shell from a config.yaml custom_shells entry.
// Arguments are split like a POSIX command line; "{{shell_command}}" marks where the
// command goes and is appended when missing.
func FromCustom(c domain.CustomShell) (Shell, error) {
	if strings.TrimSpace(c.ID) == "" {
		return nil, fmt.Errorf("custom shell needs an id")
	}
	if strings.TrimSpace(c.Binary) == "" {
		return nil, fmt.Errorf("custom shell %s: binary is required", c.ID)
	}

	args, err := shlex.Split(c.Arguments)
	if err != nil {
		return nil, fmt.Errorf("custom shell %s: parse arguments: %w", c.ID, err)
	}
	if !strings.Contains(c.Arguments, placeholder(domain.ShellCommandPlaceholder)) {
		args = append(args, placeholder(domain.ShellCommandPlaceholder))
	}

	esc, err := escaper.ByName(c.Escaper)
	if err != nil {
		return nil, fmt.Errorf("custom shell %s: %w", c.ID, err)
	}

	platforms := c.Platforms
	if len(platforms) == 0 {
		platforms = domain.AllPlatforms
	}

	separator := "/"
	if _, ok := esc.(escaper.PowerShell); ok && domain.CurrentPlatform() == domain.PlatformWindows {
		separator = `\`
	}
	translator, ok := translatorByName(c.PathTranslation, separator)
	if !ok {
		return nil, fmt.Errorf("custom shell %s: unknown path translation %q", c.ID, c.PathTranslation)
	}

	name := c.Name
	if name == "" {
		name = c.ID
	}

	return &augmenting{
		Definition: &Definition{
			id:            c.ID,
			name:          name,
			binary:        c.Binary,
			args:          args,
			platforms:     platforms,
			listSeparator: c.ListSeparator,
			translator:    translator,
			escaper:       esc,
			wrapper:       c.Wrapper,
		},
	}, nil
}
