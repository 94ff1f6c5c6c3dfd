// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	Port       string

	// Site
	LoginURL      string
	BasketURL     string
	MyBookingsURL string
	Timezone      string
	ReleaseOffset int    // days ahead that slots become bookable
	Headless      bool   // run browsers without a window
	Strategic     bool   // use the midnight-release navigation strategy
	ScreenshotDir string // where audit screenshots are written

	// Google Sheets
	SheetID            string
	ServiceAccountJSON string

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	SenderEmail       string
	SummaryRecipients []string
	OpsRecipient      string

	// Payment card
	CardNumber       string
	CardExpiryMonth  string
	CardExpiryYear   string
	CardSecurityCode string

	// Cardholder
	CardholderName string
	Address        string
	City           string
	Postcode       string

	// Daemon
	DaemonSpec string // cron expression for the nightly run
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		Port:       getEnv("PORT", "8080"),

		LoginURL:      getEnv("LOGIN_URL", "https://camdenactive.camden.gov.uk/security/login.aspx"),
		BasketURL:     getEnv("BASKET_URL", "https://camdenactive.camden.gov.uk/basket/"),
		MyBookingsURL: getEnv("MY_BOOKINGS_URL", "https://camdenactive.camden.gov.uk/mybookings/"),
		Timezone:      getEnv("BOOKING_TIMEZONE", "Europe/London"),
		ReleaseOffset: getEnvAsInt("RELEASE_OFFSET_DAYS", 35),
		Headless:      getEnvAsBool("HEADLESS_MODE", true),
		Strategic:     getEnvAsBool("STRATEGIC_TIMING", true),
		ScreenshotDir: getEnv("SCREENSHOT_DIR", "screenshots"),

		SheetID:            getEnv("GSHEET_MAIN_ID", ""),
		ServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		SenderEmail:       getEnv("SENDER_EMAIL", ""),
		OpsRecipient:      getEnv("OPS_EMAIL_ADDRESS", ""),

		CardNumber:       getEnv("LB_CARD_NUMBER", ""),
		CardExpiryMonth:  getEnv("LB_CARD_EXPIRY_MONTH", ""),
		CardExpiryYear:   getEnv("LB_CARD_EXPIRY_YEAR", ""),
		CardSecurityCode: getEnv("LB_CARD_SECURITY_CODE", ""),

		CardholderName: getEnv("LB_CARDHOLDER_NAME", ""),
		Address:        getEnv("LB_ADDRESS", ""),
		City:           getEnv("LB_CITY", ""),
		Postcode:       getEnv("LB_POSTCODE", ""),

		DaemonSpec: getEnv("DAEMON_CRON", "0 45 23 * * *"),
	}

	for _, key := range []string{"INFO_EMAIL_ADDRESS", "KYLE_EMAIL_ADDRESS"} {
		if v := os.Getenv(key); v != "" {
			config.SummaryRecipients = append(config.SummaryRecipients, v)
		}
	}

	return config, nil
}

// Location resolves the configured civil timezone. The release boundary,
// countdown logging and audit timestamps all use this location.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// AccountPassword looks up the per-account password the way the rest of
// the secrets are stored: one env var per account, e.g. BRUCE_CAM_PASSWORD.
func AccountPassword(accountName string) string {
	key := ""
	for _, r := range accountName {
		switch {
		case r >= 'a' && r <= 'z':
			key += string(r - 32)
		case r == ' ' || r == '-':
			key += "_"
		default:
			key += string(r)
		}
	}
	return os.Getenv(key + "_CAM_PASSWORD")
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
