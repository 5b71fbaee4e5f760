package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/shcmd/internal/infrastructure/cli/helpers"
	"github.com/doeshing/shcmd/internal/infrastructure/storage"
	"github.com/doeshing/shcmd/internal/ports"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(session *Session) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect execution history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(session),
		newHistoryClearCommand(session),
		newHistoryExportCommand(session),
		newHistoryStatsCommand(session),
	)

	return historyCmd
}

func historyStore(session *Session) (ports.HistoryRepository, error) {
	container, err := session.container()
	if err != nil {
		return nil, err
	}
	if container.Store == nil {
		return nil, errors.New(ErrHistoryStoreUnavailable)
	}
	return container.Store, nil
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(session *Session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent execution attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(session)
			if err != nil {
				return err
			}
			return listHistoryEntries(cmd.Context(), cmd.OutOrStdout(), store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultHistoryLimit, "Max entries to show")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(session *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every history record",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(session)
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			return nil
		},
	}
}

// newHistoryExportCommand creates the 'history export' subcommand
func newHistoryExportCommand(session *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export history as JSON lines, to stdout or a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(session)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", args[0], err)
				}
				defer f.Close()
				out = f
			}
			return exportHistory(cmd.Context(), out, store)
		},
	}
}

// newHistoryStatsCommand creates the 'history stats' subcommand
func newHistoryStatsCommand(session *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show success rate and most used commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(session)
			if err != nil {
				return err
			}
			return showHistoryStats(cmd.Context(), cmd.OutOrStdout(), store)
		},
	}
}

// listHistoryEntries lists recent history entries
func listHistoryEntries(ctx context.Context, out io.Writer, store ports.HistoryRepository, limit int) error {
	records, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to retrieve history records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}
	helpers.RenderHistory(out, records, time.Now())
	return nil
}

// exportHistory writes every record, oldest first
func exportHistory(ctx context.Context, out io.Writer, store ports.HistoryRepository) error {
	records, err := store.Recent(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to retrieve history records: %w", err)
	}
	slices.Reverse(records)
	if err := storage.ExportJSONL(out, records); err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}
	return nil
}

// showHistoryStats displays success rate and top commands
func showHistoryStats(ctx context.Context, out io.Writer, store ports.HistoryRepository) error {
	records, err := store.Recent(ctx, MaxHistoryAnalysisRecords)
	if err != nil {
		return fmt.Errorf("failed to retrieve history for analysis: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}
	helpers.RenderHistoryStatistics(out, helpers.AnalyzeHistory(records))
	return nil
}
