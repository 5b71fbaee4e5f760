package domain

import "time"

// HistoryRecord captures one execution attempt.
type HistoryRecord struct {
	ID              string         `json:"id"`
	Timestamp       time.Time      `json:"timestamp"`
	CommandID       string         `json:"command_id"`
	Alias           string         `json:"alias"`
	Command         string         `json:"command"`
	Shell           string         `json:"shell"`
	State           ExecutionState `json:"state"`
	Success         bool           `json:"success"`
	ExitCode        *int           `json:"exit_code,omitempty"`
	ExecutionTimeMS int64          `json:"execution_time_ms"`
}
