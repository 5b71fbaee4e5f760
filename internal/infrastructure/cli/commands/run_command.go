package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/doeshing/shcmd/internal/app"
	"github.com/doeshing/shcmd/internal/application/execution"
	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/infrastructure/cli/helpers"
	"github.com/doeshing/shcmd/internal/infrastructure/document"
)

// documentFlags select the active document of a run.
type documentFlags struct {
	file      string
	selection string
	latest    bool
}

func (f *documentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Active document, absolute or relative to the vault")
	cmd.Flags().StringVarP(&f.selection, "selection", "s", "", "Selected text in the active document")
	cmd.Flags().BoolVar(&f.latest, "latest", false, "Use the most recently modified file in the vault as the active document")
}

func (f *documentFlags) collect(cmd *cobra.Command, container *app.Container) (*domain.Document, error) {
	req := document.Request{File: f.file, Latest: f.latest}
	if cmd.Flags().Changed("selection") {
		selection := f.selection
		req.Selection = &selection
	}
	return container.Documents.Collect(cmd.Context(), req)
}

// NewRunCommand creates the run command
func NewRunCommand(session *Session) *cobra.Command {
	var (
		doc     documentFlags
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "run <id|alias>",
		Short: "Run a shell command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			shellCommand, err := container.Config.FindShellCommand(args[0])
			if err != nil {
				return err
			}
			activeDocument, err := doc.collect(cmd, container)
			if err != nil {
				return err
			}

			ctx, stop := interruptible(cmd.Context(), session)
			defer stop()

			outcome, err := container.ExecutionService.Execute(ctx, execution.Request{
				Command:  shellCommand,
				Document: activeDocument,
			})
			if err != nil {
				return err
			}
			if summary {
				helpers.RenderOutcome(cmd.ErrOrStderr(), outcome)
			}
			return outcomeError(outcome)
		},
	}

	doc.register(cmd)
	cmd.Flags().BoolVar(&summary, "summary", false, "Print a summary line after the command finishes")
	return cmd
}

// interruptible returns a context for a run. The first interrupt fires the terminate
// control of the executing notice when one is visible and cancels the context otherwise.
func interruptible(parent context.Context, session *Session) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				if session.TerminateRunning != nil && session.TerminateRunning() {
					continue
				}
				cancel()
			}
		}
	}()

	return ctx, func() {
		signal.Stop(signals)
		cancel()
	}
}
