package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/shcmd/internal/app"
	"github.com/doeshing/shcmd/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The container is built after flag parsing
// and stored in the returned session; the caller closes it.
func NewRootCmd(opts Options) (*cobra.Command, *commands.Session) {
	session := &commands.Session{}
	var (
		configPath string
		vaultRoot  string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "shcmd",
		Short: "shcmd - run templated shell commands against a notes vault",
		Long: "shcmd runs user-defined shell command templates. Templates reference variables\n" +
			"such as {{file_path:relative}} that are resolved and escaped for the target shell.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if session.Container != nil {
				return nil
			}
			container, err := app.BuildContainer(cmd.Context(), app.Options{
				ConfigPath: configPath,
				VaultRoot:  vaultRoot,
				Verbose:    opts.Verbose || verbose,
			})
			if err != nil {
				return err
			}

			notifier := NewNotifier(cmd.ErrOrStderr())
			prompter := NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			container.AttachUI(app.UI{
				Confirmer: prompter,
				Presenter: prompter,
				Notifier:  notifier,
				Clipboard: NewClipboard(),
			})
			session.Container = container
			session.TerminateRunning = notifier.TerminateRunning
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default ~/.shcmd/config.yaml)")
	root.PersistentFlags().StringVar(&vaultRoot, "vault", "", "Vault root directory (default from config, else the current directory)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		commands.NewRunCommand(session),
		commands.NewPreviewCommand(session),
		commands.NewListCommand(session),
		commands.NewVarsCommand(session),
		commands.NewShellsCommand(session),
		commands.NewHistoryCommand(session),
		commands.NewEventCommand(session),
		commands.NewWatchCommand(session),
		commands.NewDoctorCommand(session),
		commands.NewConfigCommand(session),
	)
	return root, session
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, opts Options, args []string, stderr io.Writer) int {
	if stderr == nil {
		stderr = os.Stderr
	}
	root, session := NewRootCmd(opts)
	root.SetArgs(args)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if session.Container != nil {
		if closeErr := session.Container.Close(); closeErr != nil {
			session.Container.Logger.Warn("failed to close resources", map[string]interface{}{"error": closeErr.Error()})
		}
	}
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var outcomeErr *commands.OutcomeError
	if errors.As(err, &outcomeErr) {
		return outcomeErr.ExitCode()
	}
	fmt.Fprintln(stderr, "error:", err)
	return 1
}
