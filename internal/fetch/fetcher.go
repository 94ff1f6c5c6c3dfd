package fetch

import (
	"context"
	"sort"
	"sync"
	"time"

	"courtbook-service/internal/booking"
	"courtbook-service/internal/domain/entity"
	"courtbook-service/pkg/logger"
)

// selNextPage is the dashboard's pagination control.
const selNextPage = `//a[contains(@class, "button-primary")][contains(normalize-space(.), "Next")]`

// maxPages bounds pagination in case the Next control never disappears.
const maxPages = 25

// Config carries the site endpoints the fetcher needs.
type Config struct {
	LoginURL      string
	MyBookingsURL string
}

// Fetcher logs each account in, walks its paginated bookings dashboard and
// collects every upcoming booking. Accounts are fetched concurrently, one
// browser per account.
type Fetcher struct {
	connect booking.ConnectFunc
	cfg     Config
	log     logger.Logger
}

func NewFetcher(connect booking.ConnectFunc, cfg Config, log logger.Logger) *Fetcher {
	return &Fetcher{connect: connect, cfg: cfg, log: log}
}

// FetchAll scrapes every account and returns the combined bookings, most
// recent session date first. A failing account contributes nothing but
// never aborts the others.
func (f *Fetcher) FetchAll(ctx context.Context, accounts []entity.Account) []entity.UpcomingBooking {
	results := make([][]entity.UpcomingBooking, len(accounts))
	var wg sync.WaitGroup

	for i, account := range accounts {
		wg.Add(1)
		go func(i int, account entity.Account) {
			defer wg.Done()
			results[i] = f.fetchAccount(ctx, account)
		}(i, account)
	}
	wg.Wait()

	var all []entity.UpcomingBooking
	for _, r := range results {
		all = append(all, r...)
	}
	sortByDateDesc(all)
	f.log.Info("Bookings fetched", "accounts", len(accounts), "bookings", len(all))
	return all
}

func (f *Fetcher) fetchAccount(ctx context.Context, account entity.Account) []entity.UpcomingBooking {
	log := f.log.With("account", account.Name)

	page, release, err := f.connect(ctx)
	if err != nil {
		log.Error("Browser launch failed", "error", err)
		return nil
	}
	defer release()

	if err := booking.SignIn(ctx, page, f.cfg.LoginURL, account.Email, account.Password); err != nil {
		log.Error("Login failed", "error", err)
		return nil
	}
	if err := page.Navigate(ctx, f.cfg.MyBookingsURL); err != nil {
		log.Error("Bookings dashboard unreachable", "error", err)
		return nil
	}

	var all []entity.UpcomingBooking
	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		html, err := page.HTML(ctx)
		if err != nil {
			log.Warn("Page read failed", "page", pageNum, "error", err)
			break
		}
		bookings, err := parseBookings(html, account)
		if err != nil {
			log.Warn("Page parse failed", "page", pageNum, "error", err)
			break
		}
		all = append(all, bookings...)

		if !page.IsVisible(ctx, selNextPage, 3*time.Second) {
			break
		}
		if err := page.Click(ctx, selNextPage, 5*time.Second); err != nil {
			log.Warn("Pagination click failed", "page", pageNum, "error", err)
			break
		}
	}

	log.Info("Account bookings fetched", "bookings", len(all))
	return all
}

func sortByDateDesc(bookings []entity.UpcomingBooking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		di, erri := time.Parse("2/1/2006", bookings[i].Date)
		dj, errj := time.Parse("2/1/2006", bookings[j].Date)
		if erri != nil || errj != nil {
			return false
		}
		return di.After(dj)
	})
}
