package booking

import (
	"context"
	"time"

	"courtbook-service/internal/browser"
	"courtbook-service/pkg/logger"
)

// CardDetails is the payment card used when account credit does not cover
// the basket.
type CardDetails struct {
	Number       string
	ExpiryMonth  string
	ExpiryYear   string
	SecurityCode string
}

func (c CardDetails) Complete() bool {
	return c.Number != "" && c.ExpiryMonth != "" && c.ExpiryYear != "" && c.SecurityCode != ""
}

// CardholderDetails is the billing information requested after the card
// form on some payment routes.
type CardholderDetails struct {
	Name     string
	Address  string
	City     string
	Postcode string
	Email    string
}

func (c CardholderDetails) Complete() bool {
	return c.Name != "" && c.Address != "" && c.City != "" && c.Postcode != ""
}

// Checkout pushes a basket of reserved slots through confirmation to the
// site's payment-successful page. The flow is linear: basket review, then
// an optional card payment sub-flow, then the final confirmation check.
type Checkout struct {
	page      browser.Page
	shots     *browser.Recorder
	log       logger.Logger
	basketURL string
	card      CardDetails
	holder    CardholderDetails
}

func NewCheckout(page browser.Page, shots *browser.Recorder, log logger.Logger, basketURL string, card CardDetails, holder CardholderDetails) *Checkout {
	return &Checkout{page: page, shots: shots, log: log, basketURL: basketURL, card: card, holder: holder}
}

// Finalize confirms the basket and returns true only when the site shows
// the payment-successful page. All failures are absorbed into a false
// return; the caller's sibling sessions keep running regardless.
func (c *Checkout) Finalize(ctx context.Context) bool {
	if err := c.page.Navigate(ctx, c.basketURL); err != nil {
		c.log.Warn("Basket navigation failed", "error", err)
		c.shots.Capture(ctx, c.page, "basket navigation failed")
		return false
	}
	c.shots.Capture(ctx, c.page, "basket page")

	if err := c.page.Click(ctx, selCheckoutButton, 10*time.Second); err != nil {
		c.log.Warn("Make booking click failed", "error", err)
		c.shots.Capture(ctx, c.page, "make booking failed")
		return false
	}
	c.shots.Capture(ctx, c.page, "after make booking")

	// Sufficient account credit confirms straight away, no payment forms.
	if c.page.IsVisible(ctx, selPaymentOK, 3*time.Second) {
		c.log.Info("Payment successful, covered by account credit")
		c.shots.Capture(ctx, c.page, "payment successful")
		return true
	}

	if c.page.IsVisible(ctx, selCardNumber, 5*time.Second) {
		if !c.card.Complete() {
			c.log.Error("Payment form shown but no card details configured")
			c.shots.Capture(ctx, c.page, "payment form no details")
			return false
		}
		if !c.fillPaymentForm(ctx) {
			return false
		}
		c.shots.Capture(ctx, c.page, "after payment form")

		if c.page.IsVisible(ctx, selCardholderName, 5*time.Second) {
			if !c.holder.Complete() {
				c.log.Error("Cardholder form shown but no cardholder details configured")
				c.shots.Capture(ctx, c.page, "cardholder form no details")
				return false
			}
			if !c.fillCardholderForm(ctx) {
				return false
			}
			c.shots.Capture(ctx, c.page, "after cardholder details")
		}

		if c.page.IsVisible(ctx, selMakePayment, 5*time.Second) {
			c.log.Info("Confirming payment")
			if err := c.page.Click(ctx, selMakePayment, 5*time.Second); err != nil {
				c.log.Warn("Make payment click failed", "error", err)
				c.shots.Capture(ctx, c.page, "make payment failed")
				return false
			}
			c.shots.Capture(ctx, c.page, "after make payment")
		}
	}

	// Payment processing can take a while on the site's side.
	if err := c.page.WaitVisible(ctx, selPaymentOK, 15*time.Second); err != nil {
		c.log.Error("Payment confirmation never appeared", "error", err)
		c.shots.Capture(ctx, c.page, "payment final fail")
		return false
	}
	c.log.Info("Payment successful, booking confirmed")
	c.shots.Capture(ctx, c.page, "payment successful")
	return true
}

func (c *Checkout) fillPaymentForm(ctx context.Context) bool {
	c.log.Info("Filling payment form")
	c.shots.Capture(ctx, c.page, "payment form")

	fields := []struct{ sel, value string }{
		{selCardNumber, c.card.Number},
		{selExpiryMonth, c.card.ExpiryMonth},
		{selExpiryYear, c.card.ExpiryYear},
		{selSecurityCode, c.card.SecurityCode},
	}
	for _, f := range fields {
		if err := c.page.Fill(ctx, f.sel, f.value, 5*time.Second); err != nil {
			c.log.Warn("Payment field fill failed", "selector", f.sel, "error", err)
			c.shots.Capture(ctx, c.page, "payment form error")
			return false
		}
	}
	if err := c.page.Click(ctx, selContinue, 5*time.Second); err != nil {
		c.log.Warn("Payment form submit failed", "error", err)
		c.shots.Capture(ctx, c.page, "payment form error")
		return false
	}
	return true
}

func (c *Checkout) fillCardholderForm(ctx context.Context) bool {
	c.log.Info("Filling cardholder details")
	c.shots.Capture(ctx, c.page, "cardholder form")

	fields := []struct{ sel, value string }{
		{selCardholderName, c.holder.Name},
		{selAddress, c.holder.Address},
		{selCity, c.holder.City},
		{selPostcode, c.holder.Postcode},
		{selEmailField, c.holder.Email},
	}
	for _, f := range fields {
		if err := c.page.Fill(ctx, f.sel, f.value, 5*time.Second); err != nil {
			c.log.Warn("Cardholder field fill failed", "selector", f.sel, "error", err)
			c.shots.Capture(ctx, c.page, "cardholder form error")
			return false
		}
	}
	if err := c.page.Click(ctx, selContinue, 5*time.Second); err != nil {
		c.log.Warn("Cardholder form submit failed", "error", err)
		c.shots.Capture(ctx, c.page, "cardholder form error")
		return false
	}
	return true
}
