package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/content-search-sync/internal/app"
	"github.com/stacklok/content-search-sync/internal/content"
)

// statusRow is one line of the status table
type statusRow struct {
	name       string
	searchable bool
	index      string
	exists     string
	published  string
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the index state of every content type",
		Long: `Print one row per configured content type with its index name, whether the
index exists and how many published records the content source holds.

The command fails when the search engine cannot be reached.`,
		RunE: runStatus,
	}
	addConfigFlag(cmd)
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	components, err := app.NewComponents(ctx, app.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build components: %w", err)
	}
	defer func() {
		if closeErr := components.Close(context.WithoutCancel(ctx)); closeErr != nil {
			slog.Error("Failed to release components", "error", closeErr)
		}
	}()

	available := components.Synchronizer.IsAvailable(ctx)
	rows, err := collectStatus(ctx, components, available)
	if err != nil {
		return err
	}

	if err := renderStatus(cmd, rows); err != nil {
		return err
	}
	if !available {
		return errUnavailable
	}
	return nil
}

// collectStatus queries the engine and the source for every content type concurrently
func collectStatus(ctx context.Context, components *app.AppComponents, available bool) ([]statusRow, error) {
	categories := components.Registry.Categories()
	rows := make([]statusRow, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, category := range categories {
		rows[i] = statusRow{name: category.Name, searchable: category.Searchable, index: "-", exists: "-"}
		if category.Searchable {
			rows[i].index = components.Synchronizer.IndexName(category.Name)
		}

		g.Go(func() error {
			return fillStatusRow(gctx, components, category, available, &rows[i])
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func fillStatusRow(
	ctx context.Context,
	components *app.AppComponents,
	category content.Category,
	available bool,
	row *statusRow,
) error {
	records, err := components.Source.GetRecords(ctx, category.Name, content.Filter{Status: content.StatusPublished})
	if err != nil {
		return fmt.Errorf("failed to read records of %s: %w", category.Name, err)
	}
	row.published = strconv.Itoa(len(records))

	if !category.Searchable || !available {
		return nil
	}

	exists, err := components.Search.IndexExists(ctx, row.index)
	if err != nil {
		row.exists = "unknown"
		slog.Warn("Failed to check index", "index", row.index, "error", err)
		return nil
	}
	row.exists = strconv.FormatBool(exists)
	return nil
}

func renderStatus(cmd *cobra.Command, rows []statusRow) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Content Type", "Searchable", "Index", "Index Exists", "Published")
	for _, row := range rows {
		if err := table.Append(row.name, strconv.FormatBool(row.searchable), row.index, row.exists, row.published); err != nil {
			return fmt.Errorf("failed to render status: %w", err)
		}
	}
	return table.Render()
}
