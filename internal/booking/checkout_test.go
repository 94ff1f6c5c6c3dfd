package booking

import (
	"context"
	"testing"
	"time"

	"courtbook-service/internal/browser"
	"courtbook-service/pkg/logger"
)

const testBasketURL = "https://example.org/basket/"

func newTestCheckout(t *testing.T, page *fakePage, card CardDetails, holder CardholderDetails) *Checkout {
	t.Helper()
	log := logger.NewNop()
	shots := browser.NewRecorder(t.TempDir(), time.UTC, log)
	return NewCheckout(page, shots, log, testBasketURL, card, holder)
}

func TestCheckoutImmediateSuccess(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	page.show(selCheckoutButton, selPaymentOK)
	checkout := newTestCheckout(t, page, CardDetails{}, CardholderDetails{})

	if !checkout.Finalize(context.Background()) {
		t.Fatal("Finalize() = false with immediate payment confirmation")
	}
	if len(page.fills) != 0 {
		t.Errorf("filled payment fields %v on the credit route, want none", page.fills)
	}
	if got := page.clickCount(selMakePayment); got != 0 {
		t.Errorf("clicked make-payment %d times on the credit route", got)
	}
}

func TestCheckoutPaymentFormWithoutCardDetails(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	page.show(selCheckoutButton, selCardNumber)
	checkout := newTestCheckout(t, page, CardDetails{}, CardholderDetails{})

	if checkout.Finalize(context.Background()) {
		t.Fatal("Finalize() = true with a payment form and no card details")
	}
	if len(page.fills) != 0 {
		t.Errorf("filled fields %v without card details configured", page.fills)
	}
}

func TestCheckoutCardRoute(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	page.show(selCheckoutButton, selCardNumber, selExpiryMonth, selExpiryYear,
		selSecurityCode, selContinue, selMakePayment)
	// Confirmation appears once the payment is submitted.
	page.onClick = func(p *fakePage, sel string) {
		if sel == selMakePayment {
			p.show(selPaymentOK)
		}
	}

	card := CardDetails{Number: "4111111111111111", ExpiryMonth: "09", ExpiryYear: "28", SecurityCode: "123"}
	checkout := newTestCheckout(t, page, card, CardholderDetails{})

	if !checkout.Finalize(context.Background()) {
		t.Fatal("Finalize() = false on the card payment route")
	}
	if got := page.fills[selCardNumber]; got != card.Number {
		t.Errorf("card number filled with %q, want %q", got, card.Number)
	}
	if got := page.clickCount(selMakePayment); got != 1 {
		t.Errorf("clicked make-payment %d times, want once", got)
	}
}

func TestCheckoutConfirmationNeverAppears(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	page.show(selCheckoutButton)
	checkout := newTestCheckout(t, page, CardDetails{}, CardholderDetails{})

	if checkout.Finalize(context.Background()) {
		t.Fatal("Finalize() = true without the payment confirmation page")
	}
}
