package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/doeshing/shcmd/internal/domain"
)

// NewListCommand creates the list command
func NewListCommand(session *Session) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured shell commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			cmds := FilterCommands(container.Config.ShellCommands, filter)
			if len(cmds) == 0 {
				if len(container.Config.ShellCommands) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), MsgNoCommands)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), MsgNoMatchingCommands)
				}
				return nil
			}
			displayCommands(cmd.OutOrStdout(), cmds, domain.CurrentPlatform())
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Fuzzy filter on id, alias and command text")
	return cmd
}

// FilterCommands returns the commands fuzzily matching filter, best match first.
// An empty filter keeps every command in configuration order.
func FilterCommands(cmds []domain.ShellCommand, filter string) []domain.ShellCommand {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return cmds
	}

	targets := make([]string, len(cmds))
	for i, c := range cmds {
		targets[i] = strings.Join([]string{c.Alias, c.ID, c.CommandFor(domain.CurrentPlatform())}, " ")
	}
	ranks := fuzzy.RankFindFold(filter, targets)
	sort.Stable(ranks)

	out := make([]domain.ShellCommand, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, cmds[r.OriginalIndex])
	}
	return out
}

func displayCommands(out io.Writer, cmds []domain.ShellCommand, platform domain.Platform) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	for _, c := range cmds {
		name := c.Alias
		if name == "" {
			name = c.ID
		}
		bold.Fprint(out, name)
		faint.Fprintf(out, "  [%s]\n", c.ID)

		template := c.CommandFor(platform)
		if strings.TrimSpace(template) == "" {
			faint.Fprintf(out, "  (not defined for %s)\n", platform.DisplayName())
		} else {
			fmt.Fprintf(out, "  %s\n", strings.ReplaceAll(template, "\n", "\n  "))
		}
		for _, binding := range c.Events {
			if binding.Pattern != "" {
				faint.Fprintf(out, "  on %s %s\n", binding.Type, binding.Pattern)
			} else {
				faint.Fprintf(out, "  on %s\n", binding.Type)
			}
		}
	}
}
