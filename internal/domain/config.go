package domain

// Config mirrors ~/.shcmd/config.yaml.
type Config struct {
	ConfigFormatVersion string `yaml:"config_format_version"`

	// VaultRoot is the directory every relative path is resolved against.
	VaultRoot string `yaml:"vault_root"`
	// WorkingDirectory may be empty, relative to VaultRoot, or absolute.
	WorkingDirectory string `yaml:"working_directory"`

	DefaultShells     map[Platform]string `yaml:"default_shells"`
	PathAugmentations map[Platform]string `yaml:"path_augmentations"`

	ErrorMessageDuration        int              `yaml:"error_message_duration"`
	NotificationMessageDuration int              `yaml:"notification_message_duration"`
	ExecutionNotificationMode   NotificationMode `yaml:"execution_notification_mode"`
	PreviewVariables            bool             `yaml:"preview_variables"`

	CustomShells     []CustomShell              `yaml:"custom_shells"`
	CustomVariables  []CustomVariable           `yaml:"custom_variables"`
	VariableDefaults map[string]VariableDefault `yaml:"variable_defaults"`
	ShellCommands    []ShellCommand             `yaml:"shell_commands"`

	Storage StorageSettings `yaml:"storage"`
	Logging LoggingSettings `yaml:"logging"`
}

// StorageSettings selects where custom variable values and history are kept.
type StorageSettings struct {
	Driver string `yaml:"driver"` // sqlite | file
	Path   string `yaml:"path"`
}

// LoggingSettings configures the structured logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// CustomVariable is a user-defined variable referenced as {{_name}}.
// Its value lives in the variable store keyed by ID, so renaming keeps the value.
type CustomVariable struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description,omitempty"`
	DefaultValue string `yaml:"default_value,omitempty"`
}

// VariableDefaultType controls what happens when a variable cannot be resolved.
type VariableDefaultType string

const (
	VariableDefaultShowErrors VariableDefaultType = "show-errors"
	VariableDefaultValue      VariableDefaultType = "value"
)

// VariableDefault replaces an unavailable variable with a fixed value.
type VariableDefault struct {
	Type  VariableDefaultType `yaml:"type"`
	Value string              `yaml:"value"`
}

// ShellCommand is a user-defined command template and its execution policy.
type ShellCommand struct {
	ID                        string              `yaml:"id"`
	Alias                     string              `yaml:"alias,omitempty"`
	PlatformSpecificCommands  map[string]string   `yaml:"platform_specific_commands"`
	Shells                    map[Platform]string `yaml:"shells,omitempty"`
	ConfirmExecution          bool                `yaml:"confirm_execution,omitempty"`
	IgnoreErrorCodes          []int               `yaml:"ignore_error_codes,omitempty"`
	OutputHandlers            OutputHandlers      `yaml:"output_handlers"`
	OutputHandlingMode        OutputHandlingMode  `yaml:"output_handling_mode,omitempty"`
	OutputWrappers            OutputWrappers      `yaml:"output_wrappers,omitempty"`
	Stdin                     string              `yaml:"stdin,omitempty"`
	Preactions                []PreactionConfig   `yaml:"preactions,omitempty"`
	Events                    []EventBinding      `yaml:"events,omitempty"`
	ExecutionNotificationMode NotificationMode    `yaml:"execution_notification_mode,omitempty"`
}

// DefaultCommandKey is the platform_specific_commands key used on every platform
// that has no dedicated entry.
const DefaultCommandKey = "default"

// OutputHandlers selects one handler per stream.
type OutputHandlers struct {
	Stdout OutputHandlerCode `yaml:"stdout"`
	Stderr OutputHandlerCode `yaml:"stderr"`
}

// OutputWrappers are templates containing {{output}}.
type OutputWrappers struct {
	Stdout string `yaml:"stdout,omitempty"`
	Stderr string `yaml:"stderr,omitempty"`
}

// OutputHandlerCode enumerates output handlers.
type OutputHandlerCode string

const (
	OutputIgnore            OutputHandlerCode = "ignore"
	OutputNotification      OutputHandlerCode = "notification"
	OutputTerminal          OutputHandlerCode = "terminal"
	OutputClipboard         OutputHandlerCode = "clipboard"
	OutputCurrentFileTop    OutputHandlerCode = "current-file-top"
	OutputCurrentFileBottom OutputHandlerCode = "current-file-bottom"
)

// OutputHandlingMode decides when output reaches handlers.
type OutputHandlingMode string

const (
	OutputModeBuffered OutputHandlingMode = "buffered"
	OutputModeRealtime OutputHandlingMode = "realtime"
)

// NotificationMode controls the "executing…" notice.
type NotificationMode string

const (
	NotificationDisabled  NotificationMode = "disabled"
	NotificationQuick     NotificationMode = "quick"
	NotificationPermanent NotificationMode = "permanent"
	NotificationIfLong    NotificationMode = "if-long"
)

// PreactionType enumerates preaction variants.
type PreactionType string

const (
	PreactionPrompt PreactionType = "prompt"
)

// PreactionConfig configures one step run before the final parse.
type PreactionConfig struct {
	Type    PreactionType `yaml:"type"`
	Enabled *bool         `yaml:"enabled,omitempty"`
	Prompt  *PromptConfig `yaml:"prompt,omitempty"`
}

// IsEnabled defaults to true when unset.
func (p PreactionConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// PromptConfig describes an interactive form.
type PromptConfig struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description,omitempty"`
	Fields      []PromptField `yaml:"fields"`
}

// PromptField asks for one value and stores it in a custom variable.
type PromptField struct {
	Label            string `yaml:"label"`
	Description      string `yaml:"description,omitempty"`
	DefaultValue     string `yaml:"default_value,omitempty"`
	TargetVariableID string `yaml:"target_variable_id"`
	Required         bool   `yaml:"required,omitempty"`
}

// EventBinding makes a command run when an event of Type occurs.
// Pattern is an optional doublestar glob matched against the vault-relative path.
type EventBinding struct {
	Type    EventType `yaml:"type"`
	Pattern string    `yaml:"pattern,omitempty"`
}
