// internal/browser/wait.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"go.uber.org/zap"
)

// Condition is the state an element must reach before a wait resolves.
type Condition int

const (
	// Present means attached to the DOM.
	Present Condition = iota
	// Clickable means visible and not disabled.
	Clickable
)

func (c Condition) String() string {
	switch c {
	case Present:
		return "present"
	case Clickable:
		return "clickable"
	default:
		return fmt.Sprintf("condition(%d)", int(c))
	}
}

// probeTimeout bounds the follow-up query that classifies a timed out wait.
const probeTimeout = 2 * time.Second

// DOM is the page surface a Waiter polls.
type DOM interface {
	// QueryNode blocks until a node matching sel satisfies cond, re-checking every interval,
	// and returns the first such node. It returns ctx's error once ctx is done.
	QueryNode(ctx context.Context, sel string, cond Condition, interval time.Duration) (*cdp.Node, error)
	// CountNodes reports how many nodes match sel right now, without waiting.
	CountNodes(ctx context.Context, sel string) (int, error)
}

// Element is a node resolved through a Locator.
type Element struct {
	Locator Locator
	Node    *cdp.Node
}

// Waiter resolves locators against a DOM under a bounded deadline.
type Waiter struct {
	dom      DOM
	interval time.Duration
	logger   *zap.Logger
}

// NewWaiter creates a Waiter polling dom every interval.
func NewWaiter(dom DOM, interval time.Duration, logger *zap.Logger) *Waiter {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Waiter{dom: dom, interval: interval, logger: logger.Named("waiter")}
}

// WaitFor returns the first element matching loc that satisfies cond, or a *TimeoutError
// once timeout elapses. Cancellation of ctx is reported as ctx's error, not as a timeout.
func (w *Waiter) WaitFor(ctx context.Context, loc Locator, cond Condition, timeout time.Duration) (*Element, error) {
	sel, err := loc.Selector()
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = w.interval
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	node, err := w.dom.QueryNode(waitCtx, sel, cond, w.interval)
	if err == nil && node != nil {
		return &Element{Locator: loc, Node: node}, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("waiting for %s to be %s: %w", loc, cond, ctx.Err())
	}
	if waitCtx.Err() == nil {
		if err == nil {
			err = fmt.Errorf("query returned no node")
		}
		return nil, fmt.Errorf("waiting for %s to be %s: %w", loc, cond, err)
	}

	terr := &TimeoutError{Locator: loc, Condition: cond, Timeout: timeout, Present: w.present(ctx, sel)}
	w.logger.Debug("Wait timed out.",
		zap.Stringer("locator", loc),
		zap.Stringer("condition", cond),
		zap.Duration("timeout", timeout),
		zap.Bool("present", terr.Present))
	return nil, terr
}

// present checks, after a timed out wait, whether anything matches sel at all.
func (w *Waiter) present(ctx context.Context, sel string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	n, err := w.dom.CountNodes(probeCtx, sel)
	if err != nil {
		w.logger.Debug("Presence probe failed.", zap.String("selector", sel), zap.Error(err))
		return false
	}
	return n > 0
}
