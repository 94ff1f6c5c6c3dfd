package cli

import (
	"github.com/spf13/cobra"
)

func newInitSheetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-sheet",
		Short: "Create any missing tabs and headers in the configuration spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(consoleFlag(cmd))
			if err != nil {
				return err
			}

			store, err := a.sheets(ctx)
			if err != nil {
				return err
			}

			if err := store.EnsureTemplate(ctx); err != nil {
				return err
			}
			a.log.Info("Spreadsheet template is in place", "sheet", a.cfg.SheetID)
			return nil
		},
	}
}
