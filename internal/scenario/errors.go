// internal/scenario/errors.go
package scenario

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/storefront-e2e/internal/browser"
)

// AssertionError reports that the page did not match an expectation.
// Absent is set when the locator under check matched no element at all,
// which is a different outcome from matching with the wrong value.
type AssertionError struct {
	Check    string
	Expected string
	Actual   string
	Absent   bool
}

func (e *AssertionError) Error() string {
	if e.Absent {
		return fmt.Sprintf("%s: expected %s, but %s matched no element", e.Check, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: expected %s, got %s", e.Check, e.Expected, e.Actual)
}

// FailureKind is the taxonomy every scenario fault is reported under.
type FailureKind string

const (
	KindNone                       FailureKind = ""
	KindLocatorTimeout             FailureKind = "LocatorTimeout"
	KindAssertionFailure           FailureKind = "AssertionFailure"
	KindSessionStartupFailure      FailureKind = "SessionStartupFailure"
	KindUnexpectedInteractionFault FailureKind = "UnexpectedInteractionFault"
)

// Classify maps err to exactly one FailureKind. A nil error is KindNone.
func Classify(err error) FailureKind {
	if err == nil {
		return KindNone
	}
	var (
		startupErr   *browser.StartupError
		assertionErr *AssertionError
		timeoutErr   *browser.TimeoutError
	)
	switch {
	case errors.As(err, &startupErr):
		return KindSessionStartupFailure
	case errors.As(err, &assertionErr):
		return KindAssertionFailure
	case errors.As(err, &timeoutErr):
		return KindLocatorTimeout
	default:
		return KindUnexpectedInteractionFault
	}
}
