package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/infrastructure/cli/helpers"
)

var knownEventTypes = []domain.EventType{
	domain.EventManual,
	domain.EventWatchStarted,
	domain.EventFileCreated,
	domain.EventFileModified,
	domain.EventFileDeleted,
	domain.EventFileRenamed,
}

// NewEventCommand creates the event command
func NewEventCommand(session *Session) *cobra.Command {
	var file, oldFile string

	cmd := &cobra.Command{
		Use:       "event <type>",
		Short:     "Raise an event and run the commands bound to it",
		Args:      cobra.ExactArgs(1),
		ValidArgs: eventTypeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			event, err := buildEvent(args[0], file, oldFile, container.Config.VaultRoot)
			if err != nil {
				return err
			}

			ctx, stop := interruptible(cmd.Context(), session)
			defer stop()

			outcomes := container.TriggerService.Handle(ctx, event)
			if len(outcomes) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "No shell commands are bound to %s.\n", event.Type)
				return nil
			}
			var failed error
			for _, outcome := range outcomes {
				helpers.RenderOutcome(cmd.ErrOrStderr(), outcome)
				if err := outcomeError(outcome); err != nil && failed == nil {
					failed = err
				}
			}
			return failed
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File the event concerns, absolute or relative to the vault")
	cmd.Flags().StringVar(&oldFile, "old-file", "", "Previous path, for file-renamed")
	return cmd
}

func eventTypeNames() []string {
	names := make([]string, len(knownEventTypes))
	for i, t := range knownEventTypes {
		names[i] = string(t)
	}
	return names
}

// buildEvent checks the type and makes the paths absolute against the vault root.
func buildEvent(eventType, file, oldFile, vaultRoot string) (domain.Event, error) {
	event := domain.Event{Type: domain.EventType(eventType), OccurredAt: time.Now()}
	known := false
	for _, t := range knownEventTypes {
		if t == event.Type {
			known = true
			break
		}
	}
	if !known {
		return domain.Event{}, fmt.Errorf("unknown event type %q", eventType)
	}

	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(vaultRoot, p)
	}
	event.FilePath = abs(file)
	event.OldFilePath = abs(oldFile)

	switch {
	case event.IsFileEvent() && event.FilePath == "":
		return domain.Event{}, fmt.Errorf("%s needs --file", event.Type)
	case event.Type == domain.EventFileRenamed && event.OldFilePath == "":
		return domain.Event{}, fmt.Errorf("%s needs --old-file", event.Type)
	case !event.IsFileEvent() && (file != "" || oldFile != ""):
		return domain.Event{}, fmt.Errorf("%s does not concern a file", event.Type)
	}
	return event, nil
}
