// internal/scenario/assert.go
package scenario

import (
	"fmt"
	"strconv"
	"strings"
)

// Check inspects recorded observations and returns an *AssertionError when they do not hold.
type Check func(st *State) error

func observed(st *State, key string) (Observation, error) {
	o, ok := st.Observed(key)
	if !ok {
		return Observation{}, fmt.Errorf("no observation recorded under %q", key)
	}
	return o, nil
}

// TextContains holds when the text recorded under key contains want.
func TextContains(key, want string) Check {
	return func(st *State) error {
		o, err := observed(st, key)
		if err != nil {
			return err
		}
		check := key + " contains"
		if !o.Present {
			return &AssertionError{Check: check, Expected: strconv.Quote(want), Actual: o.Source, Absent: true}
		}
		if !strings.Contains(o.Text, want) {
			return &AssertionError{Check: check, Expected: strconv.Quote(want), Actual: strconv.Quote(o.Text)}
		}
		return nil
	}
}

// TextEquals holds when the text recorded under key is exactly want.
func TextEquals(key, want string) Check {
	return func(st *State) error {
		o, err := observed(st, key)
		if err != nil {
			return err
		}
		check := key + " equals"
		if !o.Present {
			return &AssertionError{Check: check, Expected: strconv.Quote(want), Actual: o.Source, Absent: true}
		}
		if o.Text != want {
			return &AssertionError{Check: check, Expected: strconv.Quote(want), Actual: strconv.Quote(o.Text)}
		}
		return nil
	}
}

// Absent holds when the locator counted under key matched no element. A count of
// "0" rendered by a still-present element does not satisfy it.
func Absent(key string) Check {
	return func(st *State) error {
		o, err := observed(st, key)
		if err != nil {
			return err
		}
		if o.Count != 0 {
			return &AssertionError{Check: key + " absent", Expected: "no matching element", Actual: fmt.Sprintf("%d element(s)", o.Count)}
		}
		return nil
	}
}

// IsVisible holds when the element recorded under key is displayed.
func IsVisible(key string) Check {
	return func(st *State) error {
		o, err := observed(st, key)
		if err != nil {
			return err
		}
		if !o.Present {
			return &AssertionError{Check: key + " visible", Expected: "a visible element", Actual: o.Source, Absent: true}
		}
		if !o.Flag {
			return &AssertionError{Check: key + " visible", Expected: "a visible element", Actual: "hidden"}
		}
		return nil
	}
}

// PricesNonDecreasing holds when the prices recorded under key are in ascending order
// for every adjacent pair. Prices are rendered like "$29.99".
func PricesNonDecreasing(key string) Check {
	return func(st *State) error {
		o, err := observed(st, key)
		if err != nil {
			return err
		}
		check := key + " sorted ascending"
		if !o.Present || len(o.Texts) == 0 {
			return &AssertionError{Check: check, Expected: "at least one price", Actual: o.Source, Absent: true}
		}
		prices := make([]float64, len(o.Texts))
		for i, text := range o.Texts {
			p, err := ParsePrice(text)
			if err != nil {
				return &AssertionError{Check: check, Expected: "a price", Actual: strconv.Quote(text)}
			}
			prices[i] = p
		}
		for i := 1; i < len(prices); i++ {
			if prices[i] < prices[i-1] {
				return &AssertionError{
					Check:    check,
					Expected: fmt.Sprintf("price %d (%.2f) >= price %d (%.2f)", i, prices[i], i-1, prices[i-1]),
					Actual:   strings.Join(o.Texts, ", "),
				}
			}
		}
		return nil
	}
}

// ParsePrice parses a displayed price such as "$7.99".
func ParsePrice(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
