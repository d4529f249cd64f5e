// internal/scenario/page.go
package scenario

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/storefront-e2e/internal/browser"
)

// Page is the browser surface a scenario drives. *browser.Session implements it.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Type(ctx context.Context, loc browser.Locator, text string) error
	Click(ctx context.Context, loc browser.Locator, opts ...browser.ClickOption) error
	Select(ctx context.Context, loc browser.Locator, value string) error
	Text(ctx context.Context, loc browser.Locator) (string, error)
	Texts(ctx context.Context, loc browser.Locator) ([]string, error)
	Count(ctx context.Context, loc browser.Locator) (int, error)
	Visible(ctx context.Context, loc browser.Locator) (bool, error)
	Location(ctx context.Context) (string, error)
}

var _ Page = (*browser.Session)(nil)

// Observation is a value read from the page by one step for a later assertion.
type Observation struct {
	Source  string
	Present bool
	Text    string
	Texts   []string
	Count   int
	Flag    bool
}

// State is what one scenario execution carries between its steps.
type State struct {
	Page        Page
	SettleDelay time.Duration
	Logger      *zap.Logger

	observed map[string]Observation
}

// NewState creates the state for a single scenario execution.
func NewState(page Page, settle time.Duration, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{Page: page, SettleDelay: settle, Logger: logger, observed: make(map[string]Observation)}
}

// Record stores an observation under key, replacing any earlier one.
func (s *State) Record(key string, o Observation) { s.observed[key] = o }

// Observed returns the observation stored under key.
func (s *State) Observed(key string) (Observation, bool) {
	o, ok := s.observed[key]
	return o, ok
}
