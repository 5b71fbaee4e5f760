package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Execution notification timings
const (
	// QuickNotificationDuration is how long a "quick" executing notice stays visible
	QuickNotificationDuration = 2 * time.Second
	// IfLongNotificationDelay is how long a process must run before an "if-long" notice appears
	IfLongNotificationDelay = 2 * time.Second
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// MaxHistoryAnalysisRecords is the maximum number of records to analyze
	MaxHistoryAnalysisRecords = 1000
)

// Template placeholders that are not variables
const (
	// ShellCommandPlaceholder marks where a shell wrapper embeds the command
	ShellCommandPlaceholder = "shell_command"
	// OutputPlaceholder marks where an output wrapper embeds the output
	OutputPlaceholder = "output"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
