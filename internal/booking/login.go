package booking

import (
	"context"
	"fmt"
	"time"

	"courtbook-service/internal/browser"
)

// SignIn drives the site's login form on page, dismissing the first-visit
// privacy banner when it shows. Shared by the booking session and the
// upcoming-bookings fetcher.
func SignIn(ctx context.Context, page browser.Page, loginURL, email, password string) error {
	if err := page.Navigate(ctx, loginURL); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}
	if page.IsVisible(ctx, selPrivacyAccept, 5*time.Second) {
		// Best effort, the banner blocks nothing once scrolled past.
		_ = page.Click(ctx, selPrivacyAccept, 5*time.Second)
	}
	if err := page.Fill(ctx, selEmailInput, email, 10*time.Second); err != nil {
		return fmt.Errorf("fill email: %w", err)
	}
	if err := page.Fill(ctx, selPasswordInput, password, 10*time.Second); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := page.Click(ctx, selLoginButton, 10*time.Second); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := page.WaitVisible(ctx, selLogoutLink, 15*time.Second); err != nil {
		return fmt.Errorf("confirm login: %w", err)
	}
	return nil
}
