// internal/scenario/login.go
package scenario

import (
	"context"
	"fmt"
)

// Login brings page to an authenticated state: it loads the base URL, fills both
// credential fields and submits through the click dispatcher. It assumes the login
// view is reachable; calling it twice without logging out in between is not supported.
func Login(ctx context.Context, page Page, username, password string) error {
	if err := page.Navigate(ctx, ""); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := page.Type(ctx, UsernameField, username); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := page.Type(ctx, PasswordField, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := page.Click(ctx, LoginButton); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// LoginAs runs the Login fixture as a scenario step.
func LoginAs(username, password string) Step {
	return Step{Kind: StepFixture, Description: "login as " + username, run: func(ctx context.Context, st *State) error {
		return Login(ctx, st.Page, username, password)
	}}
}
