// internal/scenario/step.go
package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xkilldash9x/storefront-e2e/internal/browser"
)

// StepKind names the action a Step performs.
type StepKind string

const (
	StepNavigate  StepKind = "navigate"
	StepTypeText  StepKind = "type-text"
	StepClick     StepKind = "click"
	StepSelect    StepKind = "select-option"
	StepReadText  StepKind = "read-text"
	StepReadTexts StepKind = "read-texts"
	StepCount     StepKind = "count"
	StepLocation  StepKind = "location"
	StepVisible   StepKind = "visible"
	StepPause     StepKind = "pause"
	StepAssert    StepKind = "assert"
	StepFixture   StepKind = "fixture"
)

// Step is one action in a scenario.
type Step struct {
	Kind        StepKind
	Description string
	run         func(ctx context.Context, st *State) error
}

// Run executes the step against st.
func (s Step) Run(ctx context.Context, st *State) error {
	if s.run == nil {
		return fmt.Errorf("step %q has no action", s.Description)
	}
	return s.run(ctx, st)
}

func (s Step) String() string { return string(s.Kind) + " " + s.Description }

// Navigate loads url, resolved against the base URL. An empty url is the base URL itself.
func Navigate(url string) Step {
	desc := url
	if desc == "" {
		desc = "base url"
	}
	return Step{Kind: StepNavigate, Description: desc, run: func(ctx context.Context, st *State) error {
		return st.Page.Navigate(ctx, url)
	}}
}

// TypeText types text into the field matched by loc.
func TypeText(loc browser.Locator, text string) Step {
	return Step{Kind: StepTypeText, Description: loc.String(), run: func(ctx context.Context, st *State) error {
		return st.Page.Type(ctx, loc, text)
	}}
}

// Click waits for loc and clicks it through the session's dispatcher.
func Click(loc browser.Locator, opts ...browser.ClickOption) Step {
	return Step{Kind: StepClick, Description: loc.String(), run: func(ctx context.Context, st *State) error {
		return st.Page.Click(ctx, loc, opts...)
	}}
}

// SelectOption picks the option with the given value in the select matched by loc.
func SelectOption(loc browser.Locator, value string) Step {
	return Step{Kind: StepSelect, Description: fmt.Sprintf("%s=%s", loc, value), run: func(ctx context.Context, st *State) error {
		return st.Page.Select(ctx, loc, value)
	}}
}

// ReadText records the text of loc under key. A locator that matches nothing
// is recorded as absent rather than failing, so the assertion can report it.
func ReadText(loc browser.Locator, key string) Step {
	return Step{Kind: StepReadText, Description: loc.String() + " -> " + key, run: func(ctx context.Context, st *State) error {
		text, err := st.Page.Text(ctx, loc)
		if isAbsent(err) {
			st.Record(key, Observation{Source: loc.String()})
			return nil
		}
		if err != nil {
			return err
		}
		st.Record(key, Observation{Source: loc.String(), Present: true, Text: text})
		return nil
	}}
}

// ReadTexts records the texts of every element matched by loc under key.
func ReadTexts(loc browser.Locator, key string) Step {
	return Step{Kind: StepReadTexts, Description: loc.String() + " -> " + key, run: func(ctx context.Context, st *State) error {
		texts, err := st.Page.Texts(ctx, loc)
		if isAbsent(err) {
			st.Record(key, Observation{Source: loc.String()})
			return nil
		}
		if err != nil {
			return err
		}
		st.Record(key, Observation{Source: loc.String(), Present: len(texts) > 0, Texts: texts, Count: len(texts)})
		return nil
	}}
}

// CountOf records how many elements match loc right now.
func CountOf(loc browser.Locator, key string) Step {
	return Step{Kind: StepCount, Description: loc.String() + " -> " + key, run: func(ctx context.Context, st *State) error {
		n, err := st.Page.Count(ctx, loc)
		if err != nil {
			return err
		}
		st.Record(key, Observation{Source: loc.String(), Present: n > 0, Count: n})
		return nil
	}}
}

// ReadLocation records the current document URL under key.
func ReadLocation(key string) Step {
	return Step{Kind: StepLocation, Description: key, run: func(ctx context.Context, st *State) error {
		loc, err := st.Page.Location(ctx)
		if err != nil {
			return err
		}
		st.Record(key, Observation{Source: "location", Present: true, Text: loc})
		return nil
	}}
}

// ReadVisible records whether loc is displayed.
func ReadVisible(loc browser.Locator, key string) Step {
	return Step{Kind: StepVisible, Description: loc.String() + " -> " + key, run: func(ctx context.Context, st *State) error {
		visible, err := st.Page.Visible(ctx, loc)
		if isAbsent(err) {
			st.Record(key, Observation{Source: loc.String()})
			return nil
		}
		if err != nil {
			return err
		}
		st.Record(key, Observation{Source: loc.String(), Present: true, Flag: visible})
		return nil
	}}
}

// Settle pauses for the configured settle delay, letting a form register its inputs.
func Settle() Step {
	return Step{Kind: StepPause, Description: "settle", run: func(ctx context.Context, st *State) error {
		if st.SettleDelay <= 0 {
			return nil
		}
		t := time.NewTimer(st.SettleDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}}
}

// Assert evaluates check against the recorded observations.
func Assert(description string, check Check) Step {
	return Step{Kind: StepAssert, Description: description, run: func(_ context.Context, st *State) error {
		return check(st)
	}}
}

// isAbsent reports whether err is a presence wait that found nothing at all.
func isAbsent(err error) bool {
	var terr *browser.TimeoutError
	return errors.As(err, &terr) && !terr.Present && terr.Condition == browser.Present
}
