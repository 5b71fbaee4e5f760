package domain

import "time"

// EventType names an application event that can trigger commands.
type EventType string

const (
	EventManual       EventType = "manual"
	EventWatchStarted EventType = "watch-started"
	EventFileCreated  EventType = "file-created"
	EventFileModified EventType = "file-modified"
	EventFileDeleted  EventType = "file-deleted"
	EventFileRenamed  EventType = "file-renamed"
)

// Event is the triggering context of an execution.
// FilePath and OldFilePath are absolute host paths; empty when not applicable.
type Event struct {
	Type        EventType `json:"type"`
	FilePath    string    `json:"file_path,omitempty"`
	OldFilePath string    `json:"old_file_path,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// IsFileEvent reports whether the event concerns a file.
func (e *Event) IsFileEvent() bool {
	if e == nil {
		return false
	}
	switch e.Type {
	case EventFileCreated, EventFileModified, EventFileDeleted, EventFileRenamed:
		return true
	default:
		return false
	}
}
