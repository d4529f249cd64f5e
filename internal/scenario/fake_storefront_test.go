// internal/scenario/fake_storefront_test.go
package scenario

import (
	"context"
	"time"

	"github.com/xkilldash9x/storefront-e2e/internal/browser"
)

// fakeStorefront is an in-memory Page that behaves like the storefront closely
// enough to drive the catalogue without a browser.
type fakeStorefront struct {
	page     string
	loggedIn bool
	errText  string
	inCart   bool
	sorted   bool
	menuOpen bool
	fields   map[string]string
	clicks   []string

	// Fault injection.
	validUser    string
	validPass    string
	missing      map[string]bool
	brokenRemove bool
	ignoreSort   bool
}

func newFakeStorefront() *fakeStorefront {
	return &fakeStorefront{
		validUser: "standard_user",
		validPass: "secret_sauce",
		fields:    make(map[string]string),
		missing:   make(map[string]bool),
	}
}

var _ Page = (*fakeStorefront)(nil)

var (
	unsortedPrices = []string{"$29.99", "$9.99", "$15.99", "$49.99", "$7.99", "$15.99"}
	sortedPrices   = []string{"$7.99", "$9.99", "$15.99", "$15.99", "$29.99", "$49.99"}
)

func absent(loc browser.Locator, cond browser.Condition) error {
	return &browser.TimeoutError{Locator: loc, Condition: cond, Timeout: time.Second}
}

// onPage reports whether loc is rendered on the current view.
func (f *fakeStorefront) onPage(loc browser.Locator) bool {
	if f.missing[loc.Value] {
		return false
	}
	switch loc {
	case UsernameField, PasswordField, LoginButton:
		return f.page == "login"
	case ErrorMessage:
		return f.errText != ""
	case AddBackpackButton:
		return f.page == "inventory" && !f.inCart
	case RemoveBackpackButton:
		return f.page == "inventory" && f.inCart
	case CartBadge:
		return f.page != "login" && f.inCart
	case CartLink, MenuButton:
		return f.page != "login"
	case ItemName, ItemPrice, SortControl:
		return f.page == "inventory"
	case LogoutLink:
		return f.menuOpen
	case CheckoutButton:
		return f.page == "cart"
	case FirstNameField, LastNameField, PostalCodeField, ContinueButton:
		return f.page == "step-one"
	case FinishButton:
		return f.page == "step-two"
	case CompleteHeader:
		return f.page == "complete"
	}
	return false
}

func (f *fakeStorefront) Navigate(_ context.Context, url string) error {
	if url == "" {
		f.page, f.errText, f.menuOpen = "login", "", false
		if f.loggedIn {
			f.page = "inventory"
		}
	}
	return nil
}

func (f *fakeStorefront) Type(_ context.Context, loc browser.Locator, text string) error {
	if !f.onPage(loc) {
		return absent(loc, browser.Present)
	}
	f.fields[loc.Value] += text
	return nil
}

func (f *fakeStorefront) Click(_ context.Context, loc browser.Locator, _ ...browser.ClickOption) error {
	if !f.onPage(loc) {
		return absent(loc, browser.Clickable)
	}
	f.clicks = append(f.clicks, loc.Value)
	switch loc {
	case LoginButton:
		if f.fields[UsernameField.Value] == f.validUser && f.fields[PasswordField.Value] == f.validPass {
			f.loggedIn, f.page, f.errText = true, "inventory", ""
		} else {
			f.errText = "Epic sadface: Username and password do not match any user in this service"
		}
	case AddBackpackButton:
		f.inCart = true
	case RemoveBackpackButton:
		if !f.brokenRemove {
			f.inCart = false
		}
	case CartLink:
		f.page, f.menuOpen = "cart", false
	case CheckoutButton:
		f.page = "step-one"
	case ContinueButton:
		if f.fields[FirstNameField.Value] == "" {
			f.errText = "Error: First Name is required"
			return nil
		}
		f.page, f.errText = "step-two", ""
	case FinishButton:
		f.page, f.inCart = "complete", false
	case MenuButton:
		f.menuOpen = true
	case LogoutLink:
		f.loggedIn, f.menuOpen, f.page = false, false, "login"
	}
	return nil
}

func (f *fakeStorefront) Select(_ context.Context, loc browser.Locator, value string) error {
	if !f.onPage(loc) {
		return absent(loc, browser.Present)
	}
	if value == SortPriceLowToHigh && !f.ignoreSort {
		f.sorted = true
	}
	return nil
}

func (f *fakeStorefront) Text(_ context.Context, loc browser.Locator) (string, error) {
	if !f.onPage(loc) {
		return "", absent(loc, browser.Present)
	}
	switch loc {
	case ErrorMessage:
		return f.errText, nil
	case CartBadge:
		return "1", nil
	case ItemName:
		return FirstItemName, nil
	case CompleteHeader:
		return "Thank you for your order!", nil
	}
	return "", nil
}

func (f *fakeStorefront) Texts(_ context.Context, loc browser.Locator) ([]string, error) {
	if !f.onPage(loc) {
		return nil, absent(loc, browser.Present)
	}
	if loc == ItemPrice {
		if f.sorted {
			return sortedPrices, nil
		}
		return unsortedPrices, nil
	}
	return nil, nil
}

func (f *fakeStorefront) Count(_ context.Context, loc browser.Locator) (int, error) {
	if f.onPage(loc) {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeStorefront) Visible(_ context.Context, loc browser.Locator) (bool, error) {
	if !f.onPage(loc) {
		return false, absent(loc, browser.Present)
	}
	return true, nil
}

func (f *fakeStorefront) Location(context.Context) (string, error) {
	paths := map[string]string{
		"login":     "",
		"inventory": InventoryPath,
		"cart":      "cart.html",
		"step-one":  CheckoutStepPath,
		"step-two":  "checkout-step-two.html",
		"complete":  "checkout-complete.html",
	}
	return "https://www.saucedemo.com/" + paths[f.page], nil
}
