package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"courtbook-service/internal/usecase"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run as a scheduler that fires a booking run before each midnight release",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(consoleFlag(cmd))
			if err != nil {
				return err
			}

			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}

			stopMetrics := a.serveMetrics()
			defer stopMetrics()

			store, err := a.sheets(ctx)
			if err != nil {
				return err
			}

			notifier, err := a.notifier(ctx)
			if err != nil {
				return err
			}

			orch := usecase.NewBookingOrchestrator(a.cfg, store, notifier, a.connect(), a.clock, a.met, a.log)

			c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))
			_, err = c.AddFunc(a.cfg.DaemonSpec, func() {
				a.log.Info("Scheduled booking run starting", "spec", a.cfg.DaemonSpec)
				summary, err := orch.Run(ctx)
				switch {
				case errors.Is(err, usecase.ErrNothingScheduled):
					a.log.Info("Nothing scheduled for the target day")
				case err != nil:
					a.log.Error("Scheduled booking run failed", "error", err)
				default:
					a.log.Info("Scheduled booking run finished",
						"booked", summary.SuccessCount(),
						"failed", summary.FailureCount())
				}
			})
			if err != nil {
				return err
			}

			c.Start()
			a.log.Info("Daemon started", "spec", a.cfg.DaemonSpec, "timezone", loc.String())

			<-ctx.Done()
			a.log.Info("Shutting down daemon")
			<-c.Stop().Done()
			return nil
		},
	}
}
