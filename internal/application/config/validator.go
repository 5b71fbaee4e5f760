// Package config validates a loaded configuration before commands run from it.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/output"
	"github.com/doeshing/shcmd/internal/parsing"
	"github.com/doeshing/shcmd/internal/shell"
	"github.com/doeshing/shcmd/internal/variables"
)

var customVariableName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Validate ensures config structure is consistent. Every problem found is reported.
func Validate(cfg domain.Config) error {
	var errs []error

	shells, err := shell.NewRegistry(cfg.CustomShells)
	if err != nil {
		errs = append(errs, fmt.Errorf("custom_shells: %w", err))
	}
	errs = append(errs, validateStorage(cfg.Storage))
	errs = append(errs, validateNotificationMode("execution_notification_mode", cfg.ExecutionNotificationMode))
	for p, id := range cfg.DefaultShells {
		errs = append(errs, validateShellRef(shells, "default_shells."+string(p), p, id))
	}
	errs = append(errs, validateCustomVariables(cfg.CustomVariables)...)
	errs = append(errs, validateVariableDefaults(cfg)...)

	ids := make(map[string]bool)
	aliases := make(map[string]string)
	for i, cmd := range cfg.ShellCommands {
		where := fmt.Sprintf("shell_commands[%d]", i)
		if cmd.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id must be set", where))
		} else if ids[cmd.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %s", where, cmd.ID))
		}
		ids[cmd.ID] = true
		if cmd.Alias != "" {
			key := strings.ToLower(cmd.Alias)
			if other, taken := aliases[key]; taken {
				errs = append(errs, fmt.Errorf("%s: alias %q is also used by %s", where, cmd.Alias, other))
			}
			aliases[key] = cmd.ID
		}
		errs = append(errs, ValidateCommand(cfg, shells, cmd)...)
	}
	return errors.Join(errs...)
}

// ValidateCommand checks one command against cfg. shells may be nil.
func ValidateCommand(cfg domain.Config, shells *shell.Registry, cmd domain.ShellCommand) []error {
	where := "command " + cmd.ID
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(where+": "+format, args...))
	}

	if !cmd.HasAnyCommand() {
		add("platform_specific_commands has no command")
	}
	for key := range cmd.PlatformSpecificCommands {
		if key != domain.DefaultCommandKey && domain.ParsePlatform(key) != domain.Platform(key) {
			add("unknown platform %q in platform_specific_commands", key)
		}
	}
	for p, id := range cmd.Shells {
		if err := validateShellRef(shells, "shells."+string(p), p, id); err != nil {
			add("%v", err)
		}
	}

	mode := cmd.GetOutputHandlingMode()
	if mode != domain.OutputModeBuffered && mode != domain.OutputModeRealtime {
		add("output_handling_mode must be buffered|realtime, got %s", mode)
	}
	for stream, code := range map[domain.OutputStream]domain.OutputHandlerCode{
		domain.StreamStdout: cmd.OutputHandlers.Stdout,
		domain.StreamStderr: cmd.OutputHandlers.Stderr,
	} {
		if code == "" {
			continue
		}
		if !output.Known(code) {
			add("unknown %s output handler %q", stream, code)
			continue
		}
		if mode == domain.OutputModeRealtime && !output.Realtime(code) {
			add("%s output handler %s does not support realtime mode", stream, code)
		}
	}
	if mode == domain.OutputModeRealtime && (cmd.OutputWrappers.Stdout != "" || cmd.OutputWrappers.Stderr != "") {
		add("output wrappers cannot be used in realtime mode")
	}
	for stream, wrapper := range map[domain.OutputStream]string{
		domain.StreamStdout: cmd.OutputWrappers.Stdout,
		domain.StreamStderr: cmd.OutputWrappers.Stderr,
	} {
		if wrapper != "" && !parsing.References(wrapper, domain.OutputPlaceholder) {
			add("%s output wrapper does not contain {{%s}}", stream, domain.OutputPlaceholder)
		}
	}

	if err := validateNotificationMode("execution_notification_mode", cmd.ExecutionNotificationMode); err != nil {
		add("%v", err)
	}

	for i, pa := range cmd.Preactions {
		switch pa.Type {
		case domain.PreactionPrompt:
			if pa.Prompt == nil || len(pa.Prompt.Fields) == 0 {
				add("preactions[%d]: prompt needs at least one field", i)
				continue
			}
			for j, f := range pa.Prompt.Fields {
				if f.TargetVariableID == "" {
					add("preactions[%d].fields[%d]: target_variable_id must be set", i, j)
				} else if _, ok := cfg.FindCustomVariableByID(f.TargetVariableID); !ok {
					add("preactions[%d].fields[%d]: custom variable %s does not exist", i, j, f.TargetVariableID)
				}
			}
		default:
			add("preactions[%d]: unknown type %q", i, pa.Type)
		}
	}

	for i, ev := range cmd.Events {
		if !knownEvent(ev.Type) {
			add("events[%d]: unknown event type %q", i, ev.Type)
		}
		if ev.Pattern != "" && !doublestar.ValidatePattern(ev.Pattern) {
			add("events[%d]: invalid pattern %q", i, ev.Pattern)
		}
	}
	return errs
}

func validateStorage(s domain.StorageSettings) error {
	switch s.Driver {
	case "", "sqlite", "file":
		return nil
	default:
		return fmt.Errorf("storage.driver must be sqlite|file, got %s", s.Driver)
	}
}

func validateNotificationMode(field string, mode domain.NotificationMode) error {
	switch mode {
	case "", domain.NotificationDisabled, domain.NotificationQuick, domain.NotificationPermanent, domain.NotificationIfLong:
		return nil
	default:
		return fmt.Errorf("%s must be disabled|quick|permanent|if-long, got %s", field, mode)
	}
}

func validateShellRef(shells *shell.Registry, field string, p domain.Platform, id string) error {
	if domain.ParsePlatform(string(p)) != p {
		return fmt.Errorf("%s: unknown platform", field)
	}
	if shells == nil || id == "" {
		return nil
	}
	sh, ok := shells.Get(id)
	if !ok {
		return fmt.Errorf("%s: unknown shell %s", field, id)
	}
	if !sh.SupportsPlatform(p) {
		return fmt.Errorf("%s: shell %s does not run on %s", field, id, p.DisplayName())
	}
	return nil
}

func validateCustomVariables(vars []domain.CustomVariable) []error {
	var errs []error
	ids := make(map[string]bool)
	names := make(map[string]bool)
	for i, v := range vars {
		where := fmt.Sprintf("custom_variables[%d]", i)
		if v.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id must be set", where))
		} else if ids[v.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %s", where, v.ID))
		}
		ids[v.ID] = true
		if !customVariableName.MatchString(v.Name) {
			errs = append(errs, fmt.Errorf("%s: name %q may only contain letters, digits and underscores", where, v.Name))
		}
		key := strings.ToLower(v.Name)
		if names[key] {
			errs = append(errs, fmt.Errorf("%s: duplicate name %s", where, v.Name))
		}
		names[key] = true
	}
	return errs
}

func validateVariableDefaults(cfg domain.Config) []error {
	registry, err := variables.NewDefaultRegistry(cfg)
	if err != nil {
		// Duplicate names are already reported by validateCustomVariables.
		return nil
	}
	var errs []error
	for name, d := range cfg.VariableDefaults {
		if _, ok := registry.Lookup(name); !ok {
			errs = append(errs, fmt.Errorf("variable_defaults: unknown variable %s", name))
		}
		switch d.Type {
		case domain.VariableDefaultShowErrors, domain.VariableDefaultValue:
		default:
			errs = append(errs, fmt.Errorf("variable_defaults.%s: type must be show-errors|value, got %s", name, d.Type))
		}
	}
	return errs
}

func knownEvent(t domain.EventType) bool {
	switch t {
	case domain.EventManual, domain.EventWatchStarted, domain.EventFileCreated,
		domain.EventFileModified, domain.EventFileDeleted, domain.EventFileRenamed:
		return true
	default:
		return false
	}
}
