package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/infrastructure/cli/helpers"
)

// NewShellsCommand creates the shells command
func NewShellsCommand(session *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "shells [id|binary]",
		Short: "List the shells commands can run in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			descriptors := container.Shells.Describe()
			if len(args) == 1 {
				var matched []domain.ShellDescriptor
				for _, d := range descriptors {
					if helpers.MatchShell(d, args[0]) {
						matched = append(matched, d)
					}
				}
				if len(matched) == 0 {
					return fmt.Errorf("unknown shell %s", args[0])
				}
				descriptors = matched
			}
			platform := domain.CurrentPlatform()
			displayShells(cmd.OutOrStdout(), descriptors, container.Config.GetDefaultShellID(platform))
			return nil
		},
	}
}

func displayShells(out io.Writer, descriptors []domain.ShellDescriptor, defaultID string) {
	faint := color.New(color.Faint)
	for _, d := range descriptors {
		marker := " "
		if d.ID == defaultID {
			marker = "*"
		}
		status := color.New(color.FgGreen).Sprint("available")
		if !d.Available {
			status = color.New(color.FgRed).Sprint("not found")
		}
		kind := "built-in"
		if d.Custom {
			kind = "custom"
		}
		fmt.Fprintf(out, "%s %-12s %-22s %s\n", marker, d.ID, d.Name, status)
		faint.Fprintf(out, "    binary %s, escaper %s, %s, runs on %s\n",
			d.Binary, d.Escaper, kind, helpers.FormatPlatforms(d.Platforms))
	}
}
