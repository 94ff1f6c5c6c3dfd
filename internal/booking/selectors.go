package booking

import (
	"fmt"
	"strings"
	"time"
)

// Selectors for the Camden Active booking site. Selectors starting with
// "//" are XPath, used where matching on element text is needed.
const (
	selCalendar      = "#DateTimeDiv"
	selWeekHeader    = "h4.timetable-title"
	selNextWeek      = "#ctl00_PageContent_btnNextWeek"
	selPrivacyAccept = "#rtPrivacyBannerAccept"

	selEmailInput    = `//label[contains(normalize-space(.), "Email Address")]/following::input[1]`
	selPasswordInput = `//label[contains(normalize-space(.), "Password")]/following::input[1]`
	selLoginButton   = `//a[contains(@class, "button-primary")][contains(normalize-space(.), "Log in")]`
	selLogoutLink    = `//a[contains(normalize-space(.), "Logout")]`

	selCheckoutButton = "#ctl00_PageContent_btnContinue"
	selPaymentOK      = `//h1[contains(normalize-space(.), "Payment Successful")]`
	selCardNumber     = `input[name="cardNumber"]`
	selExpiryMonth    = `input[name="expiryDate"]`
	selExpiryYear     = `input[name="expiryDate2"]`
	selSecurityCode   = `input[name="csc"]`
	selCardholderName = `input[name="cardholderName"]`
	selAddress        = `input[name="address1"]`
	selCity           = `input[name="city"]`
	selPostcode       = `input[name="postcode"]`
	selEmailField     = `input[name="emailAddress"]`
	selContinue       = `input[value="Continue"]`
	selMakePayment    = `input[value="Make a payment"]`
)

// weekHeaderSelector matches the calendar header for the week containing
// date. The site renders it as e.g. "SAT 27/9", with no zero padding.
func weekHeaderSelector(date time.Time) string {
	label := fmt.Sprintf("%s %d/%d", strings.ToUpper(date.Format("Mon")), date.Day(), int(date.Month()))
	return fmt.Sprintf(`//h4[contains(@class, "timetable-title")][contains(normalize-space(.), %q)]`, label)
}

// slotSelector matches the booking anchor for a slot. The site's hrefs
// carry the date literally and the time at hour granularity only, so the
// HHMM value is truncated to its hour pair.
func slotSelector(date time.Time, hhmm string) string {
	hour := hhmm
	if len(hour) > 2 {
		hour = hour[:2]
	}
	return fmt.Sprintf(`a.facility-book[href*="fdDate=%s"][href*="fdTime=%s"]`, date.Format("02/01/2006"), hour)
}
