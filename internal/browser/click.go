// internal/browser/click.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/storefront-e2e/internal/config"
)

// ActionExecutor runs chromedp actions against a live browser target.
type ActionExecutor interface {
	RunActions(ctx context.Context, actions ...chromedp.Action) error
}

// ClickStrategy activates an element that has already been resolved.
type ClickStrategy interface {
	Name() string
	Click(ctx context.Context, exec ActionExecutor, el *Element) error
}

// NativeClick scrolls the element into view and dispatches real mouse events at its center.
// The click lands on whatever is topmost at that point, so overlays can intercept it.
type NativeClick struct{}

func (NativeClick) Name() string { return config.ClickNative }

func (NativeClick) Click(ctx context.Context, exec ActionExecutor, el *Element) error {
	return exec.RunActions(ctx,
		dom.ScrollIntoViewIfNeeded().WithNodeID(el.Node.NodeID),
		chromedp.MouseClickNode(el.Node),
	)
}

// ForcedClick calls HTMLElement.click() on the node from page script.
// Layout and overlays are bypassed; the element's own handlers still run.
type ForcedClick struct{}

const forcedClickFn = `function() { this.click(); }`

func (ForcedClick) Name() string { return config.ClickForced }

func (ForcedClick) Click(ctx context.Context, exec ActionExecutor, el *Element) error {
	return exec.RunActions(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := callOnNode(ctx, el.Node, forcedClickFn)
		return err
	}))
}

// StrategyByName returns the strategy registered under name ("native" or "forced").
func StrategyByName(name string) (ClickStrategy, error) {
	switch name {
	case config.ClickNative:
		return NativeClick{}, nil
	case config.ClickForced:
		return ForcedClick{}, nil
	default:
		return nil, fmt.Errorf("unknown click strategy %q", name)
	}
}

// ClickOption overrides the dispatcher's defaults for a single click.
type ClickOption func(*clickSettings)

type clickSettings struct {
	strategy  ClickStrategy
	condition Condition
	timeout   time.Duration
}

// WithStrategy clicks with s instead of the session's configured strategy.
func WithStrategy(s ClickStrategy) ClickOption {
	return func(cs *clickSettings) { cs.strategy = s }
}

// WithCondition changes what the target must satisfy before the click. Default is Clickable.
func WithCondition(c Condition) ClickOption {
	return func(cs *clickSettings) { cs.condition = c }
}

// WithTimeout changes how long to wait for the target.
func WithTimeout(d time.Duration) ClickOption {
	return func(cs *clickSettings) { cs.timeout = d }
}

// Dispatcher waits for a target and clicks it with the configured strategy.
// A failed click is reported once and never retried.
type Dispatcher struct {
	waiter   *Waiter
	exec     ActionExecutor
	strategy ClickStrategy
	timeout  time.Duration
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher using strategy by default.
func NewDispatcher(waiter *Waiter, exec ActionExecutor, strategy ClickStrategy, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		waiter:   waiter,
		exec:     exec,
		strategy: strategy,
		timeout:  timeout,
		logger:   logger.Named("click"),
	}
}

// Strategy returns the default strategy.
func (d *Dispatcher) Strategy() ClickStrategy { return d.strategy }

// Click waits for loc and clicks it. Wait failures are returned unchanged.
func (d *Dispatcher) Click(ctx context.Context, loc Locator, opts ...ClickOption) error {
	cs := clickSettings{strategy: d.strategy, condition: Clickable, timeout: d.timeout}
	for _, opt := range opts {
		opt(&cs)
	}

	el, err := d.waiter.WaitFor(ctx, loc, cs.condition, cs.timeout)
	if err != nil {
		return err
	}

	if err := cs.strategy.Click(ctx, d.exec, el); err != nil {
		return fmt.Errorf("%s click on %s failed: %w", cs.strategy.Name(), loc, err)
	}
	d.logger.Debug("Clicked element.", zap.Stringer("locator", loc), zap.String("strategy", cs.strategy.Name()))
	return nil
}
