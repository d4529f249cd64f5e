// File: cmd/report.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/storefront-e2e/internal/config"
	"github.com/xkilldash9x/storefront-e2e/internal/observability"
	"github.com/xkilldash9x/storefront-e2e/internal/runner"
	"github.com/xkilldash9x/storefront-e2e/internal/store"
)

// runStore is the slice of store.Store the commands use.
type runStore interface {
	EnsureSchema(ctx context.Context) error
	PersistRun(ctx context.Context, report *runner.Report) error
	LoadRun(ctx context.Context, runID string) (*runner.Report, error)
	RecentRuns(ctx context.Context, limit int) ([]store.RunSummary, error)
}

// storeProvider defines an interface for components that can create a run store.
// Tests inject a fake instead of a live database connection.
type storeProvider interface {
	// Create returns a store, a cleanup function releasing its resources, and an error.
	Create(ctx context.Context, cfg config.Interface) (runStore, func(), error)
}

// defaultStoreProvider connects to PostgreSQL.
type defaultStoreProvider struct{}

// NewStoreProvider is a factory function that creates a new defaultStoreProvider.
func NewStoreProvider() storeProvider {
	return &defaultStoreProvider{}
}

// Create connects to the database named by the configuration and returns a
// store along with a cleanup function closing the pool.
func (p *defaultStoreProvider) Create(ctx context.Context, cfg config.Interface) (runStore, func(), error) {
	logger := observability.GetLogger()
	if cfg.Database().URL == "" {
		return nil, nil, fmt.Errorf("database URL is not configured (STOREFRONT_DATABASE_URL)")
	}

	pool, err := pgxpool.New(ctx, cfg.Database().URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storeService, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to initialize store service: %w", err)
	}

	cleanup := func() {
		pool.Close()
		logger.Debug("Database connection pool closed.")
	}
	return storeService, cleanup, nil
}

// newReportCmd creates and configures the `report` command.
func newReportCmd(provider storeProvider) *cobra.Command {
	var runID string
	var limit int

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Render a stored run, or list recent runs",
		Long: `Loads a run persisted by "run --database-url" and renders it in the chosen
format. Without --run-id, lists the most recent runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runReport(ctx, observability.GetLogger(), cfg, runID, limit, cmd.OutOrStdout(), provider)
		},
	}

	reportCmd.Flags().StringVar(&runID, "run-id", "", "ID of the run to render")
	reportCmd.Flags().IntVar(&limit, "limit", 10, "number of runs to list when --run-id is unset")
	reportCmd.Flags().StringP("format", "f", "", "report format (text, json, junit)")
	reportCmd.Flags().StringP("output", "o", "", "output file path (default: stdout)")
	reportCmd.Flags().String("database-url", "", "PostgreSQL URL the runs were persisted to")
	return reportCmd
}

// runReport contains the core, testable logic of the report command.
func runReport(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.Interface,
	runID string,
	limit int,
	out io.Writer,
	provider storeProvider,
) error {
	st, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	// Ensure cleanup is not nil before deferring (safe for mocks that might not provide a cleanup).
	if cleanup != nil {
		defer cleanup()
	}

	if runID == "" {
		runs, err := st.RecentRuns(ctx, limit)
		if err != nil {
			return err
		}
		return printRuns(out, runs)
	}

	logger.Info("Rendering stored run", zap.String("run_id", runID))
	report, err := st.LoadRun(ctx, runID)
	if err != nil {
		return err
	}
	return writeReport(logger, report, cfg.Report().Format, cfg.Report().Output, out)
}

func printRuns(out io.Writer, runs []store.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No runs stored.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tDURATION\tPASSED\tFAILED\tERRORED\tBASE URL")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%s\n",
			r.RunID, r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.Summary.Passed, r.Summary.Total, r.Summary.Failed, r.Summary.Errored, r.BaseURL)
	}
	return tw.Flush()
}
