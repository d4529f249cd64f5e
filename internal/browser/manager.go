// internal/browser/manager.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/storefront-e2e/internal/config"
	"github.com/xkilldash9x/storefront-e2e/internal/observability"
)

const defaultLaunchTimeout = 45 * time.Second

// Manager starts and stops browser sessions. Every session gets its own browser
// process so scenarios share no cookies, storage or tabs.
type Manager struct {
	cfg    config.Interface
	logger *zap.Logger

	sessions map[string]*Session
	mu       sync.Mutex
	wg       sync.WaitGroup
}

// NewManager creates a browser manager. No browser is launched until Start.
func NewManager(cfg config.Interface, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		logger:   logger.Named("browser_manager"),
		sessions: make(map[string]*Session),
	}
}

// Start launches a browser and returns a session ready for navigation.
// Any failure is returned as a *StartupError.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	bcfg := m.cfg.Browser()
	scfg := m.cfg.Suite()

	strategy, err := StrategyByName(scfg.ResolvedClickStrategy(bcfg.Headless))
	if err != nil {
		return nil, &StartupError{Err: err}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, DefaultAllocatorOptions(bcfg)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(observability.Printf(m.logger, zapcore.DebugLevel)),
		chromedp.WithErrorf(observability.Printf(m.logger, zapcore.WarnLevel)),
	)
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	timeout := bcfg.LaunchTimeout
	if timeout <= 0 {
		timeout = defaultLaunchTimeout
	}
	if err := launch(tabCtx, timeout); err != nil {
		cancel()
		m.logger.Error("Browser failed to start.", zap.Error(err))
		return nil, &StartupError{Err: err}
	}

	s := newSession(tabCtx, cancel, sessionOptions{
		BaseURL:           scfg.BaseURL,
		ImplicitWait:      bcfg.ImplicitWait,
		ClickTimeout:      scfg.Timeout,
		NavigationTimeout: scfg.NavigationTimeout,
		PollInterval:      scfg.PollInterval,
		Strategy:          strategy,
	}, m.logger)
	m.register(s)

	m.logger.Info("Browser session started.",
		zap.String("session_id", s.ID()),
		zap.String("click_strategy", strategy.Name()),
		zap.Bool("headless", bcfg.Headless))
	return s, nil
}

// launch starts the browser behind tabCtx. The first chromedp.Run allocates the
// browser, and a deadline on that context would become the browser's lifetime,
// so the timeout is enforced from outside instead.
func launch(tabCtx context.Context, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- chromedp.Run(tabCtx) }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.C:
		return fmt.Errorf("browser did not start within %s", timeout)
	}
}

func (m *Manager) register(s *Session) {
	m.wg.Add(1)
	s.onClose = func() {
		m.mu.Lock()
		delete(m.sessions, s.ID())
		m.mu.Unlock()
		m.wg.Done()
	}
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
}

// Stop tears s down. It must be called exactly once per session; later calls
// return ErrSessionClosed. If ctx ends before the browser exits, Stop returns
// an error and the process is left to finish exiting on its own.
func (m *Manager) Stop(ctx context.Context, s *Session) error {
	if s == nil {
		return errors.New("stop called with nil session")
	}

	done := make(chan bool, 1)
	go func() { done <- s.close() }()

	select {
	case closed := <-done:
		if !closed {
			return ErrSessionClosed
		}
		m.logger.Info("Browser session stopped.", zap.String("session_id", s.ID()))
		return nil
	case <-ctx.Done():
		m.logger.Error("Browser session did not stop in time.", zap.String("session_id", s.ID()), zap.Error(ctx.Err()))
		return fmt.Errorf("stopping session %s: %w", s.ID(), ctx.Err())
	}
}

// Active returns the number of sessions started and not yet stopped.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown stops any session still open and waits for them to exit.
// Sessions found here were leaked by their owner and are reported as an error.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	leaked := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		leaked = append(leaked, s)
	}
	m.mu.Unlock()

	for _, s := range leaked {
		m.logger.Error("Session still open at shutdown.", zap.String("session_id", s.ID()))
		go s.close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for browser sessions to exit: %w", ctx.Err())
	}

	if len(leaked) > 0 {
		return fmt.Errorf("%d browser session(s) were not stopped by their owner", len(leaked))
	}
	return nil
}
