// internal/runner/provider.go
package runner

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/storefront-e2e/internal/browser"
	"github.com/xkilldash9x/storefront-e2e/internal/scenario"
)

// Session is a live page owned by one scenario execution.
type Session interface {
	scenario.Page
	ID() string
}

// SessionProvider acquires and releases sessions. Stop is called exactly once
// for every session Start returned.
type SessionProvider interface {
	Start(ctx context.Context) (Session, error)
	Stop(ctx context.Context, s Session) error
}

// BrowserProvider serves sessions from a browser.Manager.
type BrowserProvider struct {
	Manager *browser.Manager
}

// NewBrowserProvider wraps m as a SessionProvider.
func NewBrowserProvider(m *browser.Manager) *BrowserProvider {
	return &BrowserProvider{Manager: m}
}

func (p *BrowserProvider) Start(ctx context.Context) (Session, error) {
	s, err := p.Manager.Start(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (p *BrowserProvider) Stop(ctx context.Context, s Session) error {
	bs, ok := s.(*browser.Session)
	if !ok {
		return fmt.Errorf("session %s was not started by this provider", s.ID())
	}
	return p.Manager.Stop(ctx, bs)
}
