// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/storefront-e2e/internal/browser"
	"github.com/xkilldash9x/storefront-e2e/internal/config"
	"github.com/xkilldash9x/storefront-e2e/internal/observability"
	"github.com/xkilldash9x/storefront-e2e/internal/reporting"
	"github.com/xkilldash9x/storefront-e2e/internal/runner"
	"github.com/xkilldash9x/storefront-e2e/internal/scenario"
)

// ErrScenariosFailed is returned by the run command when any scenario did not pass.
var ErrScenariosFailed = errors.New("scenarios did not pass")

const shutdownTimeout = 30 * time.Second

// sessionProviderFactory builds the session source for a run along with a
// shutdown hook that reclaims anything its owners failed to stop.
type sessionProviderFactory func(cfg config.Interface, logger *zap.Logger) (runner.SessionProvider, func(context.Context) error)

func browserSessions(cfg config.Interface, logger *zap.Logger) (runner.SessionProvider, func(context.Context) error) {
	m := browser.NewManager(cfg, logger)
	return runner.NewBrowserProvider(m), m.Shutdown
}

func newRunCmd(deps dependencies) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the storefront scenarios",
		Long: `Runs every scenario in the catalogue (or those selected with --scenario),
each in its own browser session, and reports the outcome of each one.
The command fails when any scenario fails or errors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runSuite(ctx, observability.GetLogger(), cfg, cmd.OutOrStdout(), deps)
		},
	}

	flags := runCmd.Flags()
	flags.StringSliceP("scenario", "s", nil, "scenario IDs, slugs or names to run (default: all)")
	flags.String("base-url", "", "storefront base URL")
	flags.Duration("timeout", 0, "per-call element wait timeout")
	flags.String("click-strategy", "", "click strategy: native, forced or auto")
	flags.Int("parallel", 0, "number of scenarios to run concurrently")
	flags.Duration("settle-delay", 0, "pause before interactions that follow a page transition")
	flags.Bool("headless", true, "run the browser headless")
	flags.String("exec-path", "", "path to the Chrome/Chromium binary")
	flags.StringP("format", "f", "", "report format: "+fmt.Sprint(reporting.Formats()))
	flags.StringP("output", "o", "", "report output path (default: stdout)")
	flags.String("database-url", "", "PostgreSQL URL to persist the run to")
	return runCmd
}

// runSuite runs the selected scenarios, writes the report and, when a
// database is configured, persists it.
func runSuite(ctx context.Context, logger *zap.Logger, cfg config.Interface, out io.Writer, deps dependencies) error {
	scenarios, err := scenario.Filter(scenario.Catalogue(cfg.Credentials()), cfg.Suite().Include)
	if err != nil {
		return err
	}

	suite := cfg.Suite()
	opts := runner.Options{
		BaseURL:         suite.BaseURL,
		ClickStrategy:   suite.ResolvedClickStrategy(cfg.Browser().Headless),
		SettleDelay:     suite.SettleDelay,
		TeardownTimeout: suite.TeardownTimeout,
		Parallelism:     suite.Parallelism,
		StartRate:       suite.StartRate,
	}

	// Open the output before any session starts.
	reporter, err := openReporter(cfg.Report().Format, cfg.Report().Output, out)
	if err != nil {
		return err
	}
	defer closeReporter(logger, reporter)

	provider, shutdown := deps.sessions(cfg, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("Session shutdown reported a problem.", zap.Error(err))
		}
	}()

	report := runner.New(provider, opts, logger).Run(ctx, scenarios)

	if err := emitReport(logger, reporter, report, cfg.Report().Output); err != nil {
		return err
	}

	if cfg.Database().URL != "" {
		// Persist even when interrupted; the partial report is still a record.
		if err := persistReport(context.WithoutCancel(ctx), cfg, report, deps.stores); err != nil {
			return err
		}
		logger.Info("Run persisted.", zap.String("run_id", report.RunID))
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if !report.OK() {
		s := report.Summary()
		return fmt.Errorf("%w: %d of %d failed, %d errored", ErrScenariosFailed, s.Failed, s.Total, s.Errored)
	}
	return nil
}

func persistReport(ctx context.Context, cfg config.Interface, report *runner.Report, provider storeProvider) error {
	st, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := st.PersistRun(ctx, report); err != nil {
		return fmt.Errorf("failed to persist run %s: %w", report.RunID, err)
	}
	return nil
}

// writeReport renders report with the configured reporter.
func writeReport(logger *zap.Logger, report *runner.Report, format, outputPath string, stdout io.Writer) error {
	reporter, err := openReporter(format, outputPath, stdout)
	if err != nil {
		return err
	}
	defer closeReporter(logger, reporter)
	return emitReport(logger, reporter, report, outputPath)
}

func openReporter(format, outputPath string, stdout io.Writer) (reporting.Reporter, error) {
	reporter, err := reporting.NewWithStdout(format, outputPath, stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reporter: %w", err)
	}
	return reporter, nil
}

func closeReporter(logger *zap.Logger, reporter reporting.Reporter) {
	if err := reporter.Close(); err != nil {
		logger.Warn("Failed to close reporter cleanly.", zap.Error(err))
	}
}

func emitReport(logger *zap.Logger, reporter reporting.Reporter, report *runner.Report, outputPath string) error {
	if err := reporter.Write(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if outputPath != "" && outputPath != "stdout" {
		logger.Info("Report successfully written to file", zap.String("path", outputPath))
	}
	return nil
}
