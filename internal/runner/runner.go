// internal/runner/runner.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/storefront-e2e/internal/browser"
	"github.com/xkilldash9x/storefront-e2e/internal/scenario"
)

const defaultTeardownTimeout = 15 * time.Second

// ErrRunCanceled marks scenarios that never started because the run was canceled.
var ErrRunCanceled = errors.New("run canceled")

// Options tunes a Runner.
type Options struct {
	BaseURL         string
	ClickStrategy   string
	SettleDelay     time.Duration
	TeardownTimeout time.Duration
	// Parallelism above 1 runs scenarios concurrently, each on its own session.
	Parallelism int
	// StartRate caps session starts per second. Zero means unlimited.
	StartRate float64
}

// PanicError is a panic recovered from a scenario body.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("scenario panicked: %v", e.Value) }

// Runner executes scenarios, each in its own session, and never stops early on failure.
type Runner struct {
	provider SessionProvider
	opts     Options
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// New creates a Runner.
func New(provider SessionProvider, opts Options, logger *zap.Logger) *Runner {
	if opts.TeardownTimeout <= 0 {
		opts.TeardownTimeout = defaultTeardownTimeout
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	r := &Runner{provider: provider, opts: opts, logger: logger.Named("runner")}
	if opts.StartRate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(opts.StartRate), 1)
	}
	return r
}

// Run executes every scenario and returns the report in the order given.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) *Report {
	report := &Report{
		RunID:           uuid.New().String(),
		StartedAt:       time.Now().UTC(),
		BaseURL:         r.opts.BaseURL,
		ClickStrategy:   r.opts.ClickStrategy,
		ContractVersion: scenario.ContractVersion,
		Results:         make([]Result, len(scenarios)),
	}
	logger := r.logger.With(zap.String("run_id", report.RunID))
	logger.Info("Starting run.", zap.Int("scenarios", len(scenarios)), zap.Int("parallelism", r.opts.Parallelism))

	if r.opts.Parallelism == 1 {
		for i, sc := range scenarios {
			report.Results[i] = r.runOne(ctx, sc, logger)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.opts.Parallelism)
		for i, sc := range scenarios {
			g.Go(func() error {
				report.Results[i] = r.runOne(ctx, sc, logger)
				return nil
			})
		}
		_ = g.Wait()
	}

	report.FinishedAt = time.Now().UTC()
	s := report.Summary()
	logger.Info("Run finished.",
		zap.Int("passed", s.Passed),
		zap.Int("failed", s.Failed),
		zap.Int("errored", s.Errored),
		zap.Duration("duration", report.Duration()))
	return report
}

// runOne drives a single scenario through its lifecycle. The session, once
// started, is stopped exactly once whatever the scenario does.
func (r *Runner) runOne(ctx context.Context, sc scenario.Scenario, logger *zap.Logger) (res Result) {
	res = Result{ID: sc.ID, Slug: sc.Slug, Name: sc.Name, StartedAt: time.Now().UTC()}
	res.advance(PhaseNotStarted)
	logger = logger.With(zap.String("scenario", sc.Title()))
	defer func() {
		res.Duration = time.Since(res.StartedAt)
		r.logResult(logger, res)
	}()

	if err := r.waitForStart(ctx); err != nil {
		res.settle(err)
		return res
	}

	res.advance(PhaseSessionStarting)
	sess, err := r.provider.Start(ctx)
	if err != nil {
		var startupErr *browser.StartupError
		if !errors.As(err, &startupErr) {
			err = &browser.StartupError{Err: err}
		}
		res.settle(err)
		return res
	}
	res.SessionID = sess.ID()

	defer r.teardown(ctx, sess, &res, logger)

	res.advance(PhaseRunning)
	res.settle(r.execute(ctx, sc, sess, logger))
	return res
}

func (r *Runner) waitForStart(ctx context.Context) error {
	if ctx.Err() != nil {
		return ErrRunCanceled
	}
	if r.limiter == nil {
		return nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRunCanceled, err)
	}
	return nil
}

// execute runs the scenario body, turning a panic into a *PanicError.
func (r *Runner) execute(ctx context.Context, sc scenario.Scenario, page scenario.Page, logger *zap.Logger) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return sc.Run(ctx, scenario.NewState(page, r.opts.SettleDelay, logger))
}

// teardown stops the session on a context that survives run cancellation.
// A failed stop leaks a browser and turns a pass into an error.
func (r *Runner) teardown(ctx context.Context, sess Session, res *Result, logger *zap.Logger) {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.TeardownTimeout)
	defer cancel()

	err := r.provider.Stop(stopCtx, sess)
	res.Teardowns++
	res.advance(PhaseSessionTornDown)
	if err == nil {
		return
	}
	res.TeardownError = err.Error()
	logger.Error("Session teardown failed.", zap.String("session_id", sess.ID()), zap.Error(err))
	if res.Status == StatusPassed {
		res.Status = StatusErrored
		res.Kind = scenario.KindUnexpectedInteractionFault
		res.Detail = "teardown: " + err.Error()
	}
}

func (r *Runner) logResult(logger *zap.Logger, res Result) {
	fields := []zap.Field{
		zap.String("status", string(res.Status)),
		zap.Duration("duration", res.Duration),
	}
	if res.Kind != scenario.KindNone {
		fields = append(fields, zap.String("kind", string(res.Kind)), zap.String("detail", res.Detail))
	}
	switch res.Status {
	case StatusPassed:
		logger.Info("Scenario passed.", fields...)
	case StatusFailed:
		logger.Warn("Scenario failed.", fields...)
	default:
		logger.Error("Scenario errored.", fields...)
	}
}
