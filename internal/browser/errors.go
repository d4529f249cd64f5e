// internal/browser/errors.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSessionClosed is returned when a session is used or stopped after teardown.
var ErrSessionClosed = errors.New("browser session already closed")

// TimeoutError reports that no element matching Locator satisfied Condition before the deadline.
// Present tells "never matched" apart from "matched but never became clickable".
type TimeoutError struct {
	Locator   Locator
	Condition Condition
	Timeout   time.Duration
	Present   bool
}

func (e *TimeoutError) Error() string {
	if e.Present {
		return fmt.Sprintf("locator %s matched but was not %s within %s", e.Locator, e.Condition, e.Timeout)
	}
	return fmt.Sprintf("locator %s matched no element within %s (waiting for %s)", e.Locator, e.Timeout, e.Condition)
}

// Unwrap lets callers test for deadline expiry with errors.Is.
func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// StartupError wraps a failure to launch or attach to a browser.
// It is not retried.
type StartupError struct {
	Err error
}

func (e *StartupError) Error() string { return "browser session startup failed: " + e.Err.Error() }

func (e *StartupError) Unwrap() error { return e.Err }
