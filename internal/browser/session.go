// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sessionOptions carries the per-session settings resolved by the Manager.
type sessionOptions struct {
	BaseURL           string
	ImplicitWait      time.Duration
	ClickTimeout      time.Duration
	NavigationTimeout time.Duration
	PollInterval      time.Duration
	Strategy          ClickStrategy
}

// Session is one live browser tab owned by exactly one scenario.
// It is created by Manager.Start and released by Manager.Stop.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	opts   sessionOptions

	waiter  *Waiter
	clicker *Dispatcher

	mu      sync.Mutex
	closed  bool
	onClose func()
}

func newSession(ctx context.Context, cancel context.CancelFunc, opts sessionOptions, logger *zap.Logger) *Session {
	id := uuid.New().String()
	s := &Session{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		opts:   opts,
		logger: logger.With(zap.String("session_id", id)),
	}
	s.waiter = NewWaiter(s, opts.PollInterval, s.logger)
	s.clicker = NewDispatcher(s.waiter, s, opts.Strategy, opts.ClickTimeout, s.logger)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// ClickStrategy returns the name of the session's default click strategy.
func (s *Session) ClickStrategy() string { return s.clicker.Strategy().Name() }

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// RunActions executes actions against the session's tab. The operation is bound by ctx
// while the CDP target comes from the session's own context.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// firstClickableFn finds the index, in document order, of the first match that is
// rendered, not hidden and not disabled. -1 when none is.
const firstClickableFn = `(() => {
	const all = document.querySelectorAll(%s);
	for (let i = 0; i < all.length; i++) {
		const el = all[i];
		if (el.disabled || el.hasAttribute('disabled')) continue;
		if (el.getClientRects().length === 0) continue;
		if (getComputedStyle(el).visibility === 'hidden') continue;
		return i;
	}
	return -1;
})()`

// QueryNode implements DOM. Presence resolves the first match through chromedp's
// polling query. Clickable scans every match on each poll so a hidden or disabled
// duplicate earlier in the document does not mask a usable one.
func (s *Session) QueryNode(ctx context.Context, sel string, cond Condition, interval time.Duration) (*cdp.Node, error) {
	if cond != Clickable {
		var nodes []*cdp.Node
		if err := s.RunActions(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQuery, chromedp.NodeReady, chromedp.RetryInterval(interval))); err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nil, fmt.Errorf("no nodes matched %q", sel)
		}
		return nodes[0], nil
	}

	expr := fmt.Sprintf(firstClickableFn, jsString(sel))
	for {
		n, err := s.firstClickable(ctx, sel, expr)
		if err != nil {
			return nil, err
		}
		if n != nil {
			return n, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// firstClickable runs one poll. It returns nil, nil when nothing qualifies yet.
func (s *Session) firstClickable(ctx context.Context, sel, expr string) (*cdp.Node, error) {
	idx := -1
	if err := s.RunActions(ctx, chromedp.Evaluate(expr, &idx)); err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, nil
	}
	var nodes []*cdp.Node
	if err := s.RunActions(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	// The DOM may have changed between the two round trips.
	if idx >= len(nodes) {
		return nil, nil
	}
	return nodes[idx], nil
}

// CountNodes implements DOM.
func (s *Session) CountNodes(ctx context.Context, sel string) (int, error) {
	var n int
	expr := fmt.Sprintf(`document.querySelectorAll(%s).length`, jsString(sel))
	if err := s.RunActions(ctx, chromedp.Evaluate(expr, &n)); err != nil {
		return 0, fmt.Errorf("counting %q: %w", sel, err)
	}
	return n, nil
}

// Navigate loads target, resolved against the base URL when relative, and waits for the load event.
func (s *Session) Navigate(ctx context.Context, target string) error {
	abs, err := s.resolve(target)
	if err != nil {
		return err
	}
	navCtx := ctx
	if s.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, s.opts.NavigationTimeout)
		defer cancel()
	}
	s.logger.Debug("Navigating.", zap.String("url", abs))
	if err := s.RunActions(navCtx, chromedp.Navigate(abs)); err != nil {
		return fmt.Errorf("navigating to %s: %w", abs, err)
	}
	return nil
}

func (s *Session) resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", target, err)
	}
	if ref.IsAbs() || s.opts.BaseURL == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", s.opts.BaseURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// find resolves loc with the implicit wait for presence.
func (s *Session) find(ctx context.Context, loc Locator) (*Element, error) {
	return s.waiter.WaitFor(ctx, loc, Present, s.opts.ImplicitWait)
}

// WaitFor exposes the session's waiter.
func (s *Session) WaitFor(ctx context.Context, loc Locator, cond Condition, timeout time.Duration) (*Element, error) {
	return s.waiter.WaitFor(ctx, loc, cond, timeout)
}

// Type sends text as key events to the element matched by loc.
func (s *Session) Type(ctx context.Context, loc Locator, text string) error {
	el, err := s.find(ctx, loc)
	if err != nil {
		return err
	}
	if err := s.RunActions(ctx, chromedp.SendKeys([]cdp.NodeID{el.Node.NodeID}, text, chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("typing into %s: %w", loc, err)
	}
	return nil
}

// Click waits for loc to become clickable and clicks it with the session's strategy.
func (s *Session) Click(ctx context.Context, loc Locator, opts ...ClickOption) error {
	return s.clicker.Click(ctx, loc, opts...)
}

// setSelectFn sets the value through the prototype setter so framework-controlled
// selects see the change, then fires the change event.
const setSelectFn = `function() {
	const setter = Object.getOwnPropertyDescriptor(HTMLSelectElement.prototype, 'value').set;
	setter.call(this, %s);
	this.dispatchEvent(new Event('change', { bubbles: true }));
	return this.value;
}`

// Select chooses the option whose value attribute equals value.
func (s *Session) Select(ctx context.Context, loc Locator, value string) error {
	el, err := s.find(ctx, loc)
	if err != nil {
		return err
	}
	var selected string
	err = s.RunActions(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, err := callOnNode(ctx, el.Node, fmt.Sprintf(setSelectFn, jsString(value)))
		if err != nil {
			return err
		}
		return decodeResult(res, &selected)
	}))
	if err != nil {
		return fmt.Errorf("selecting %q in %s: %w", value, loc, err)
	}
	if selected != value {
		return fmt.Errorf("selecting %q in %s: no such option", value, loc)
	}
	return nil
}

const innerTextFn = `function() { return this.innerText; }`

// Text returns the rendered text of the first element matched by loc.
func (s *Session) Text(ctx context.Context, loc Locator) (string, error) {
	el, err := s.find(ctx, loc)
	if err != nil {
		return "", err
	}
	var text string
	err = s.RunActions(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, err := callOnNode(ctx, el.Node, innerTextFn)
		if err != nil {
			return err
		}
		return decodeResult(res, &text)
	}))
	if err != nil {
		return "", fmt.Errorf("reading text of %s: %w", loc, err)
	}
	return text, nil
}

// Texts returns the rendered text of every element matched by loc, in document order.
// It waits for the first match like Text does.
func (s *Session) Texts(ctx context.Context, loc Locator) ([]string, error) {
	if _, err := s.find(ctx, loc); err != nil {
		return nil, err
	}
	sel, err := loc.Selector()
	if err != nil {
		return nil, err
	}
	var texts []string
	expr := fmt.Sprintf(`Array.from(document.querySelectorAll(%s), e => e.innerText)`, jsString(sel))
	if err := s.RunActions(ctx, chromedp.Evaluate(expr, &texts)); err != nil {
		return nil, fmt.Errorf("reading texts of %s: %w", loc, err)
	}
	return texts, nil
}

// Count returns how many elements currently match loc. It does not wait.
func (s *Session) Count(ctx context.Context, loc Locator) (int, error) {
	sel, err := loc.Selector()
	if err != nil {
		return 0, err
	}
	return s.CountNodes(ctx, sel)
}

const visibleFn = `function() {
	const st = window.getComputedStyle(this);
	const r = this.getBoundingClientRect();
	return st.display !== 'none' && st.visibility !== 'hidden' && r.width > 0 && r.height > 0;
}`

// Visible reports whether the element matched by loc is rendered with a non-empty box.
func (s *Session) Visible(ctx context.Context, loc Locator) (bool, error) {
	el, err := s.find(ctx, loc)
	if err != nil {
		return false, err
	}
	var visible bool
	err = s.RunActions(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, err := callOnNode(ctx, el.Node, visibleFn)
		if err != nil {
			return err
		}
		return decodeResult(res, &visible)
	}))
	if err != nil {
		return false, fmt.Errorf("checking visibility of %s: %w", loc, err)
	}
	return visible, nil
}

// Location returns the URL of the current document.
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.RunActions(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("reading location: %w", err)
	}
	return loc, nil
}

// close tears the session down. It returns false if it was already closed.
// Canceling the allocator waits for the browser process to exit, so this can block.
func (s *Session) close() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	onClose := s.onClose
	s.mu.Unlock()

	s.cancel()
	if onClose != nil {
		onClose()
	}
	return true
}
