// internal/scenario/scenario.go
package scenario

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Scenario is one independent end-to-end check: an ordered list of steps run
// against a fresh session.
type Scenario struct {
	ID    string
	Slug  string
	Name  string
	Steps []Step
}

// Title renders "01 valid_login".
func (s Scenario) Title() string { return s.ID + " " + s.Slug }

// Run executes the steps in order and stops at the first error.
// The returned error names the failing step and wraps its cause.
func (s Scenario) Run(ctx context.Context, st *State) error {
	logger := st.Logger.With(zap.String("scenario", s.Title()))
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("before step %d (%s): %w", i+1, step, err)
		}
		logger.Debug("Running step.", zap.Int("step", i+1), zap.String("kind", string(step.Kind)), zap.String("description", step.Description))
		if err := step.Run(ctx, st); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
	}
	return nil
}

// Matches reports whether sel names this scenario by ID ("3" or "03"), slug or name.
func (s Scenario) Matches(sel string) bool {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return false
	}
	if sel == s.ID || strings.TrimLeft(sel, "0") == strings.TrimLeft(s.ID, "0") {
		return true
	}
	return strings.EqualFold(sel, s.Slug) || strings.EqualFold(sel, s.Name)
}

// Filter keeps the scenarios named by include, preserving catalogue order.
// An empty include keeps everything. A selector that matches nothing is an error.
func Filter(all []Scenario, include []string) ([]Scenario, error) {
	if len(include) == 0 {
		return all, nil
	}
	keep := make([]bool, len(all))
	var unknown []string
	for _, sel := range include {
		matched := false
		for i, s := range all {
			if s.Matches(sel) {
				keep[i] = true
				matched = true
			}
		}
		if !matched {
			unknown = append(unknown, sel)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("no scenario matches %s", strings.Join(unknown, ", "))
	}
	var out []Scenario
	for i, s := range all {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out, nil
}
