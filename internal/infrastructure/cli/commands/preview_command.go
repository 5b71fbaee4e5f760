package commands

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/shcmd/internal/application/execution"
	"github.com/doeshing/shcmd/internal/infrastructure/cli/helpers"
)

// NewPreviewCommand creates the preview command
func NewPreviewCommand(session *Session) *cobra.Command {
	var (
		doc  documentFlags
		then bool
	)

	cmd := &cobra.Command{
		Use:   "preview <id|alias>",
		Short: "Resolve a shell command's variables without running it",
		Long: "Resolve every field of a shell command except the values asked for by its prompts.\n" +
			"With --run the command is executed afterwards using the resolved values.",
		Args: cobra.ExactArgs(1),
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

			req := execution.Request{Command: shellCommand, Document: activeDocument}
			results, err := container.ExecutionService.Preview(cmd.Context(), req)
			if err != nil {
				return err
			}
			helpers.RenderParsingResults(cmd.OutOrStdout(), results)
			if !then {
				return nil
			}

			ctx, stop := interruptible(cmd.Context(), session)
			defer stop()
			outcome, err := container.ExecutionService.Execute(ctx, req)
			if err != nil {
				return err
			}
			return outcomeError(outcome)
		},
	}

	doc.register(cmd)
	cmd.Flags().BoolVar(&then, "run", false, "Run the command after previewing it")
	return cmd
}
