package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	sheetsRepo "courtbook-service/internal/interface/repository"
	"courtbook-service/internal/usecase"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one booking run immediately",
		RunE:  runBooking,
	}
}

func runBooking(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(consoleFlag(cmd))
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

	summary, err := orch.Run(ctx)
	if errors.Is(err, usecase.ErrNothingScheduled) {
		a.log.Info("Nothing scheduled for the target day",
			"target", orch.TargetDate().Format("02/01/2006"))
		return nil
	}
	if errors.Is(err, sheetsRepo.ErrWorksheetNotFound) {
		a.log.Error("Spreadsheet is missing required worksheets, run 'courtbook init-sheet' first")
		return err
	}
	if err != nil {
		return err
	}

	a.log.Info("Booking run finished",
		"target", summary.TargetDate.Format("02/01/2006"),
		"booked", summary.SuccessCount(),
		"failed", summary.FailureCount())
	return nil
}
