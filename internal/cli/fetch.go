package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"courtbook-service/internal/domain/entity"
	"courtbook-service/internal/fetch"
	"courtbook-service/internal/infrastructure/config"
)

func newFetchBookingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-bookings",
		Short: "Scrape every account's upcoming bookings and publish them to the sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(consoleFlag(cmd))
			if err != nil {
				return err
			}

			store, err := a.sheets(ctx)
			if err != nil {
				return err
			}

			accounts, err := store.ReadAccounts(ctx)
			if err != nil {
				return err
			}

			ready := make([]entity.Account, 0, len(accounts))
			for _, acc := range accounts {
				acc.Password = config.AccountPassword(acc.Name)
				if !acc.Complete() {
					a.log.Warn("Skipping account with missing credentials", "account", acc.Name)
					continue
				}
				ready = append(ready, acc)
			}

			f := fetch.NewFetcher(a.connect(), fetch.Config{
				LoginURL:      a.cfg.LoginURL,
				MyBookingsURL: a.cfg.MyBookingsURL,
			}, a.log)

			bookings := f.FetchAll(ctx, ready)
			a.log.Info("Fetched upcoming bookings", "accounts", len(ready), "bookings", len(bookings))

			if err := store.WriteUpcoming(ctx, bookings); err != nil {
				return err
			}
			a.log.Info("Upcoming bookings sheet updated")
			return nil
		},
	}
}
