package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stacklok/content-search-sync/internal/app"
)

// errUnavailable is returned when the search engine cannot be reached
var errUnavailable = errors.New("search engine is not available")

func newReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild every search index once and exit",
		Long: `Rebuild the index of every searchable content type, the same way the
management page does, and print the debug log of the run to standard output.

The command fails when the search engine cannot be reached. Failures of single
steps or records are part of the debug log and do not fail the command.`,
		RunE: runReindex,
	}
	addConfigFlag(cmd)
	return cmd
}

func runReindex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.Reindex.GetTimeout())
	defer cancel()

	components, err := app.NewComponents(ctx, app.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build components: %w", err)
	}
	defer func() {
		if closeErr := components.Close(context.WithoutCancel(ctx)); closeErr != nil {
			slog.Error("Failed to release components", "error", closeErr)
		}
	}()

	if !components.Synchronizer.IsAvailable(ctx) {
		return errUnavailable
	}

	for _, line := range components.Synchronizer.ReindexAll(ctx) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}

	if run := components.Synchronizer.LastRun(); run != nil {
		slog.Info("Reindex complete",
			"run_id", run.ID,
			"imported", run.Imported,
			"failed", run.Failed,
			"duration", run.Duration.String())
	}
	return nil
}
