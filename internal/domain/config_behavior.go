package domain

import (
	"fmt"
	"slices"
	"strings"
)

// FindShellCommand looks a command up by ID first and alias second.
func (c *Config) FindShellCommand(ref string) (ShellCommand, error) {
	for _, cmd := range c.ShellCommands {
		if cmd.ID == ref {
			return cmd, nil
		}
	}
	for _, cmd := range c.ShellCommands {
		if cmd.Alias != "" && strings.EqualFold(cmd.Alias, ref) {
			return cmd, nil
		}
	}
	return ShellCommand{}, fmt.Errorf("%w: %s", ErrCommandNotFound, ref)
}

// FindCustomVariableByName returns the custom variable named name (without the leading underscore).
func (c *Config) FindCustomVariableByName(name string) (CustomVariable, bool) {
	name = strings.TrimPrefix(name, "_")
	for _, v := range c.CustomVariables {
		if v.Name == name {
			return v, true
		}
	}
	return CustomVariable{}, false
}

// FindCustomVariableByID returns the custom variable with the given stable ID.
func (c *Config) FindCustomVariableByID(id string) (CustomVariable, bool) {
	for _, v := range c.CustomVariables {
		if v.ID == id {
			return v, true
		}
	}
	return CustomVariable{}, false
}

// AddCustomVariable appends a custom variable.
// Returns an error if the name or ID is already taken.
func (c *Config) AddCustomVariable(v CustomVariable) error {
	if _, exists := c.FindCustomVariableByName(v.Name); exists {
		return fmt.Errorf("custom variable %s already exists", v.Name)
	}
	if _, exists := c.FindCustomVariableByID(v.ID); exists {
		return fmt.Errorf("custom variable id %s already exists", v.ID)
	}
	c.CustomVariables = append(c.CustomVariables, v)
	return nil
}

// RemoveCustomVariable removes the custom variable with the given name.
func (c *Config) RemoveCustomVariable(name string) error {
	name = strings.TrimPrefix(name, "_")
	idx := slices.IndexFunc(c.CustomVariables, func(v CustomVariable) bool { return v.Name == name })
	if idx == -1 {
		return fmt.Errorf("custom variable %s not found", name)
	}
	c.CustomVariables = slices.Delete(c.CustomVariables, idx, idx+1)
	return nil
}

// GetDefaultShellID returns the configured default shell for a platform, or "" when unset.
func (c *Config) GetDefaultShellID(p Platform) string {
	if c.DefaultShells == nil {
		return ""
	}
	return c.DefaultShells[p]
}

// GetPathAugmentation returns the PATH augmentation for a platform.
func (c *Config) GetPathAugmentation(p Platform) string {
	if c.PathAugmentations == nil {
		return ""
	}
	return c.PathAugmentations[p]
}

// GetNotificationMode returns the execution notification mode, preferring the command's override.
func (c *Config) GetNotificationMode(cmd ShellCommand) NotificationMode {
	if cmd.ExecutionNotificationMode != "" {
		return cmd.ExecutionNotificationMode
	}
	if c.ExecutionNotificationMode == "" {
		return NotificationDisabled
	}
	return c.ExecutionNotificationMode
}

// GetErrorMessageDurationSeconds returns how long error notices stay visible.
func (c *Config) GetErrorMessageDurationSeconds() int {
	const defaultSeconds = 20

	if c.ErrorMessageDuration <= 0 {
		return defaultSeconds
	}
	return c.ErrorMessageDuration
}

// GetNotificationMessageDurationSeconds returns how long regular notices stay visible.
func (c *Config) GetNotificationMessageDurationSeconds() int {
	const defaultSeconds = 10

	if c.NotificationMessageDuration <= 0 {
		return defaultSeconds
	}
	return c.NotificationMessageDuration
}

// CommandFor returns the command template for a platform, falling back to the default entry.
func (s ShellCommand) CommandFor(p Platform) string {
	if cmd, ok := s.PlatformSpecificCommands[string(p)]; ok && strings.TrimSpace(cmd) != "" {
		return cmd
	}
	return s.PlatformSpecificCommands[DefaultCommandKey]
}

// DefinedPlatforms lists the platforms that have a dedicated, non-empty command.
func (s ShellCommand) DefinedPlatforms() []Platform {
	var out []Platform
	for _, p := range AllPlatforms {
		if strings.TrimSpace(s.PlatformSpecificCommands[string(p)]) != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasAnyCommand reports whether any platform, including default, has a non-empty command.
func (s ShellCommand) HasAnyCommand() bool {
	for _, cmd := range s.PlatformSpecificCommands {
		if strings.TrimSpace(cmd) != "" {
			return true
		}
	}
	return false
}

// ShellIDFor returns the command-level shell override for a platform.
func (s ShellCommand) ShellIDFor(p Platform) string {
	if s.Shells == nil {
		return ""
	}
	return s.Shells[p]
}

// IgnoresExitCode reports whether code is on the command's ignore-list.
func (s ShellCommand) IgnoresExitCode(code int) bool {
	return slices.Contains(s.IgnoreErrorCodes, code)
}

// GetOutputHandlingMode defaults to buffered.
func (s ShellCommand) GetOutputHandlingMode() OutputHandlingMode {
	if s.OutputHandlingMode == "" {
		return OutputModeBuffered
	}
	return s.OutputHandlingMode
}

// DisplayName prefers the alias over the raw template.
func (s ShellCommand) DisplayName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.CommandFor(CurrentPlatform())
}

// PromptTargetIDs returns the custom variable IDs written by enabled prompt preactions.
func (s ShellCommand) PromptTargetIDs() []string {
	var ids []string
	for _, pa := range s.Preactions {
		if pa.Type != PreactionPrompt || !pa.IsEnabled() || pa.Prompt == nil {
			continue
		}
		for _, f := range pa.Prompt.Fields {
			if f.TargetVariableID != "" {
				ids = append(ids, f.TargetVariableID)
			}
		}
	}
	return ids
}
