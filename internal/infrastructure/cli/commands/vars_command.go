package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/doeshing/shcmd/internal/app"
	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/infrastructure/cli/helpers"
	"github.com/doeshing/shcmd/internal/variables"
)

// NewVarsCommand creates the vars command with all subcommands
func NewVarsCommand(session *Session) *cobra.Command {
	varsCmd := &cobra.Command{
		Use:   "vars",
		Short: "Inspect variables and manage custom variable values",
	}

	varsCmd.AddCommand(
		newVarsListCommand(session),
		newVarsGetCommand(session),
		newVarsSetCommand(session),
		newVarsUnsetCommand(session),
		newVarsAddCommand(session),
		newVarsRemoveCommand(session),
	)
	return varsCmd
}

func newVarsListCommand(session *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and custom variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			return listVariables(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

func newVarsGetCommand(session *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print the stored value of a custom variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			def, err := findCustomVariable(container, args[0])
			if err != nil {
				return err
			}
			value, ok, err := container.Store.Get(cmd.Context(), def.ID)
			if err != nil {
				return err
			}
			if !ok {
				if def.DefaultValue == "" {
					return fmt.Errorf("custom variable %s has no value", def.Name)
				}
				value = def.DefaultValue
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newVarsSetCommand(session *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store a value for a custom variable",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			def, err := findCustomVariable(container, args[0])
			if err != nil {
				return err
			}
			return container.Store.Set(cmd.Context(), def.ID, strings.Join(args[1:], " "))
		},
	}
}

func newVarsUnsetCommand(session *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <name>",
		Short: "Forget the stored value of a custom variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			def, err := findCustomVariable(container, args[0])
			if err != nil {
				return err
			}
			return container.Store.Delete(cmd.Context(), def.ID)
		},
	}
}

func newVarsAddCommand(session *Session) *cobra.Command {
	var def domain.CustomVariable

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Define a new custom variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return err
			}

			def.ID = uuid.NewString()
			def.Name = strings.TrimPrefix(args[0], variables.CustomPrefix)
			if err := cfg.AddCustomVariable(def); err != nil {
				return err
			}
			if err := helpers.SaveConfigWithValidation(cmd.Context(), container, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added {{%s%s}} (id %s)\n", variables.CustomPrefix, def.Name, def.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&def.Description, "description", "", "Description shown in listings")
	cmd.Flags().StringVar(&def.DefaultValue, "default", "", "Value used while none is stored")
	return cmd
}

func newVarsRemoveCommand(session *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a custom variable and its stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := session.container()
			if err != nil {
				return err
			}
			def, err := findCustomVariable(container, args[0])
			if err != nil {
				return err
			}
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := cfg.RemoveCustomVariable(def.Name); err != nil {
				return err
			}
			if err := helpers.SaveConfigWithValidation(cmd.Context(), container, cfg); err != nil {
				return err
			}
			return container.Store.Delete(cmd.Context(), def.ID)
		},
	}
}

func findCustomVariable(container *app.Container, name string) (domain.CustomVariable, error) {
	def, ok := container.Config.FindCustomVariableByName(name)
	if !ok {
		return domain.CustomVariable{}, fmt.Errorf("custom variable %s not found", strings.TrimPrefix(name, variables.CustomPrefix))
	}
	return def, nil
}

func listVariables(ctx context.Context, out io.Writer, container *app.Container) error {
	values, err := container.Store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read variable values: %w", err)
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Fprintln(out, "Built-in variables:")
	for _, v := range container.Variables.All() {
		if _, custom := v.(*variables.Custom); custom {
			continue
		}
		fmt.Fprintf(out, "  %s\n", variables.Usage(v))
		faint.Fprintf(out, "    %s\n", v.Help())
	}

	if len(container.Config.CustomVariables) == 0 {
		return nil
	}
	bold.Fprintln(out, "Custom variables:")
	for _, def := range container.Config.CustomVariables {
		value, ok := values[def.ID]
		switch {
		case ok:
			fmt.Fprintf(out, "  {{%s%s}} = %q\n", variables.CustomPrefix, def.Name, value)
		case def.DefaultValue != "":
			fmt.Fprintf(out, "  {{%s%s}} = %q (default)\n", variables.CustomPrefix, def.Name, def.DefaultValue)
		default:
			fmt.Fprintf(out, "  {{%s%s}} (no value)\n", variables.CustomPrefix, def.Name)
		}
		if def.Description != "" {
			faint.Fprintf(out, "    %s\n", def.Description)
		}
	}
	return nil
}
