package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/shcmd/internal/infrastructure/events"
)

// NewWatchCommand creates the watch command
func NewWatchCommand(session *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the vault and run the commands bound to file events",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			root := container.Config.VaultRoot
			if root == "" {
				return errors.New("vault root is not configured")
			}

			ctx, stop := interruptible(cmd.Context(), session)
			defer stop()

			// Subscribe before the watcher publishes watch-started.
			subscription, err := container.Bus.Subscribe(ctx)
			if err != nil {
				return err
			}
			watcher, err := events.NewWatcher(root, container.Bus, container.Logger)
			if err != nil {
				return err
			}

			watchErr := make(chan error, 1)
			go func() { watchErr <- watcher.Run(ctx) }()

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (press Ctrl+C to stop)\n", root)
			consumeErr := container.TriggerService.Consume(ctx, subscription)
			stop()
			if err := <-watchErr; err != nil && ctx.Err() == nil {
				return err
			}
			if consumeErr != nil && ctx.Err() == nil {
				return consumeErr
			}
			return nil
		},
	}
}
