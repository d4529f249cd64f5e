// internal/scenario/contract.go
package scenario

import "github.com/xkilldash9x/storefront-e2e/internal/browser"

// ContractVersion identifies the storefront markup these selectors were written against.
// Bump it whenever a selector below changes.
const ContractVersion = "saucedemo-2024.1"

// Selectors the suite depends on. They are the storefront's external interface.
var (
	// Login view.
	UsernameField = browser.ByID("user-name")
	PasswordField = browser.ByID("password")
	LoginButton   = browser.ByID("login-button")
	ErrorMessage  = browser.ByCSS("h3[data-test='error']")

	// Inventory.
	AddBackpackButton    = browser.ByID("add-to-cart-sauce-labs-backpack")
	RemoveBackpackButton = browser.ByID("remove-sauce-labs-backpack")
	CartBadge            = browser.ByClass("shopping_cart_badge")
	CartLink             = browser.ByClass("shopping_cart_link")
	ItemName             = browser.ByClass("inventory_item_name")
	ItemPrice            = browser.ByClass("inventory_item_price")
	SortControl          = browser.ByClass("product_sort_container")

	// Checkout.
	CheckoutButton  = browser.ByID("checkout")
	FirstNameField  = browser.ByID("first-name")
	LastNameField   = browser.ByID("last-name")
	PostalCodeField = browser.ByID("postal-code")
	ContinueButton  = browser.ByID("continue")
	FinishButton    = browser.ByID("finish")
	CompleteHeader  = browser.ByClass("complete-header")

	// Navigation menu.
	MenuButton = browser.ByID("react-burger-menu-btn")
	LogoutLink = browser.ByID("logout_sidebar_link")
)

// Values the storefront is expected to render.
const (
	SortPriceLowToHigh = "lohi"

	InventoryPath    = "inventory.html"
	CheckoutStepPath = "checkout-step-one.html"

	CredentialMismatchText = "Username and password do not match"
	FirstNameRequiredText  = "First Name is required"
	OrderCompleteText      = "Thank you for your order"
	FirstItemName          = "Sauce Labs Backpack"
)
