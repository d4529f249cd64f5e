// internal/scenario/catalogue.go
package scenario

import (
	"github.com/xkilldash9x/storefront-e2e/internal/browser"
	"github.com/xkilldash9x/storefront-e2e/internal/config"
)

// Checkout form values for the completed order scenario.
const (
	checkoutFirstName  = "Test"
	checkoutLastName   = "User"
	checkoutPostalCode = "12345"
)

// Catalogue returns the suite's scenarios in reporting order.
// Every scenario is self-contained and expects a fresh session.
func Catalogue(creds config.CredentialsConfig) []Scenario {
	login := LoginAs(creds.Username, creds.Password)

	return []Scenario{
		{
			ID: "01", Slug: "valid_login", Name: "Valid login lands on the inventory",
			Steps: []Step{
				Navigate(""),
				TypeText(UsernameField, creds.Username),
				TypeText(PasswordField, creds.Password),
				Click(LoginButton),
				ReadLocation("location"),
				Assert("landed on inventory", TextContains("location", InventoryPath)),
			},
		},
		{
			ID: "02", Slug: "invalid_login", Name: "Invalid login shows a credential mismatch",
			Steps: []Step{
				Navigate(""),
				TypeText(UsernameField, creds.InvalidUsername),
				TypeText(PasswordField, creds.InvalidPassword),
				Click(LoginButton),
				ReadText(ErrorMessage, "error"),
				Assert("mismatch message shown", TextContains("error", CredentialMismatchText)),
			},
		},
		{
			ID: "03", Slug: "add_to_cart", Name: "Adding an item shows a cart count of one",
			Steps: []Step{
				login,
				Click(AddBackpackButton),
				ReadText(CartBadge, "cart badge"),
				Assert("cart badge reads 1", TextEquals("cart badge", "1")),
			},
		},
		{
			ID: "04", Slug: "remove_from_cart", Name: "Removing the item hides the cart count",
			Steps: []Step{
				login,
				Click(AddBackpackButton),
				Click(RemoveBackpackButton),
				CountOf(CartBadge, "cart badge"),
				Assert("cart badge gone", Absent("cart badge")),
			},
		},
		{
			ID: "05", Slug: "item_details", Name: "First inventory item has the expected name",
			Steps: []Step{
				login,
				ReadText(ItemName, "first item"),
				Assert("first item name", TextEquals("first item", FirstItemName)),
			},
		},
		{
			ID: "06", Slug: "proceed_to_checkout", Name: "Checkout opens the information step",
			Steps: []Step{
				login,
				Click(CartLink),
				Click(CheckoutButton),
				ReadLocation("location"),
				Assert("on checkout step one", TextContains("location", CheckoutStepPath)),
			},
		},
		{
			ID: "07", Slug: "checkout_validation", Name: "Checkout without a first name is rejected",
			Steps: []Step{
				login,
				Click(CartLink),
				Click(CheckoutButton),
				Click(ContinueButton),
				ReadText(ErrorMessage, "error"),
				Assert("first name required", TextContains("error", FirstNameRequiredText)),
			},
		},
		{
			ID: "08", Slug: "complete_checkout", Name: "Completed checkout confirms the order",
			Steps: []Step{
				login,
				Click(AddBackpackButton),
				Click(CartLink),
				Click(CheckoutButton),
				TypeText(FirstNameField, checkoutFirstName),
				TypeText(LastNameField, checkoutLastName),
				TypeText(PostalCodeField, checkoutPostalCode),
				Settle(),
				Click(ContinueButton),
				Settle(),
				Click(FinishButton),
				ReadText(CompleteHeader, "confirmation"),
				Assert("order confirmed", TextContains("confirmation", OrderCompleteText)),
			},
		},
		{
			ID: "09", Slug: "sort_by_price", Name: "Sorting by price ascending orders the prices",
			Steps: []Step{
				login,
				SelectOption(SortControl, SortPriceLowToHigh),
				ReadTexts(ItemPrice, "prices"),
				Assert("prices ascending", PricesNonDecreasing("prices")),
			},
		},
		{
			ID: "10", Slug: "logout", Name: "Logging out returns to the login view",
			Steps: []Step{
				login,
				Click(MenuButton),
				// The sidebar link is attached before its slide-in animation ends.
				Click(LogoutLink, browser.WithCondition(browser.Present), browser.WithStrategy(browser.ForcedClick{})),
				ReadVisible(LoginButton, "login button"),
				Assert("login button visible", IsVisible("login button")),
			},
		},
	}
}
