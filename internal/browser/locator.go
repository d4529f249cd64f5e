// internal/browser/locator.go
package browser

import (
	"fmt"
	"strings"
)

// Strategy names how a Locator's value is interpreted.
type Strategy string

const (
	StrategyID    Strategy = "id"
	StrategyClass Strategy = "class"
	StrategyCSS   Strategy = "css"
)

// Locator identifies zero or more DOM nodes on the current page.
// It is a value type; copies are safe to share.
type Locator struct {
	Strategy Strategy
	Value    string
}

// ByID locates an element by its id attribute.
func ByID(id string) Locator { return Locator{Strategy: StrategyID, Value: id} }

// ByClass locates elements carrying the given class name.
func ByClass(class string) Locator { return Locator{Strategy: StrategyClass, Value: class} }

// ByCSS locates elements matching a CSS selector.
func ByCSS(selector string) Locator { return Locator{Strategy: StrategyCSS, Value: selector} }

// String renders the locator as "strategy=value", the same form ParseLocator accepts.
func (l Locator) String() string {
	return string(l.Strategy) + "=" + l.Value
}

// Selector returns the CSS selector equivalent of the locator.
func (l Locator) Selector() (string, error) {
	if strings.TrimSpace(l.Value) == "" {
		return "", fmt.Errorf("locator %q has an empty value", l.String())
	}
	switch l.Strategy {
	case StrategyID:
		return `[id="` + escapeAttr(l.Value) + `"]`, nil
	case StrategyClass:
		if strings.ContainsAny(l.Value, " \t\n") {
			return "", fmt.Errorf("class locator %q must name a single class", l.Value)
		}
		return `[class~="` + escapeAttr(l.Value) + `"]`, nil
	case StrategyCSS:
		return l.Value, nil
	default:
		return "", fmt.Errorf("unknown locator strategy %q", l.Strategy)
	}
}

// MustSelector is Selector for locators known to be valid at compile time.
func (l Locator) MustSelector() string {
	sel, err := l.Selector()
	if err != nil {
		panic(err)
	}
	return sel
}

// ParseLocator parses "id=foo", "class=bar" or "css=div > a".
// A value without a known prefix is treated as a CSS selector.
func ParseLocator(s string) (Locator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Locator{}, fmt.Errorf("empty locator")
	}
	if prefix, rest, ok := strings.Cut(s, "="); ok {
		switch Strategy(strings.ToLower(strings.TrimSpace(prefix))) {
		case StrategyID:
			return validated(ByID(strings.TrimSpace(rest)))
		case StrategyClass:
			return validated(ByClass(strings.TrimSpace(rest)))
		case StrategyCSS:
			return validated(ByCSS(strings.TrimSpace(rest)))
		}
	}
	return validated(ByCSS(s))
}

func validated(l Locator) (Locator, error) {
	if _, err := l.Selector(); err != nil {
		return Locator{}, err
	}
	return l, nil
}

func escapeAttr(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v)
}
