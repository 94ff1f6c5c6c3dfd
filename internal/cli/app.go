package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"courtbook-service/internal/booking"
	"courtbook-service/internal/browser"
	"courtbook-service/internal/domain/repository"
	"courtbook-service/internal/infrastructure/config"
	"courtbook-service/internal/infrastructure/oauth"
	"courtbook-service/internal/interface/gmail"
	sheetsRepo "courtbook-service/internal/interface/repository"
	"courtbook-service/pkg/logger"
	"courtbook-service/pkg/metrics"
)

// app holds the shared wiring every subcommand starts from.
type app struct {
	cfg   *config.Config
	log   logger.Logger
	clock booking.Clock
	met   *metrics.Metrics
}

func newApp(console bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewLogger(console)

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return &app{
		cfg:   cfg,
		log:   log,
		clock: booking.NewClock(loc),
		met:   metrics.NewMetrics("courtbook"),
	}, nil
}

func (a *app) sheets(ctx context.Context) (*sheetsRepo.SheetsRepository, error) {
	if a.cfg.SheetID == "" {
		return nil, fmt.Errorf("GSHEET_MAIN_ID is not set")
	}
	return sheetsRepo.NewSheetsRepository(ctx, a.cfg.SheetID, a.cfg.ServiceAccountJSON, a.log)
}

// notifier builds the Gmail sender, or returns nil when the Gmail
// credentials are incomplete. Callers treat nil as "emails disabled".
func (a *app) notifier(ctx context.Context) (repository.Notifier, error) {
	cfg := a.cfg
	if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" ||
		cfg.GmailRefreshToken == "" || cfg.SenderEmail == "" {
		a.log.Warn("Gmail credentials incomplete, email notifications disabled")
		return nil, nil
	}

	auth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, a.log)
	ts := auth.GetTokenSource(ctx)

	n, err := gmail.NewNotifier(ctx, ts, cfg.SenderEmail, a.log)
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return n, nil
}

// connect launches a fresh browser per session.
func (a *app) connect() booking.ConnectFunc {
	headless := a.cfg.Headless
	return func(ctx context.Context) (browser.Page, func(), error) {
		b, err := browser.Launch(ctx, headless)
		if err != nil {
			return nil, nil, err
		}
		return b.Page(), b.Close, nil
	}
}

// serveMetrics exposes /metrics and /health for the lifetime of the
// returned shutdown func.
func (a *app) serveMetrics() func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":"%s"}`, a.cfg.AppVersion)
	})

	srv := &http.Server{
		Addr:    ":" + a.cfg.Port,
		Handler: mux,
	}

	go func() {
		a.log.Info("Metrics server listening", "port", a.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Metrics server stopped", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
