// Package cli defines the courtbook command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build metadata, injected at link time.
var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "courtbook",
		Short:         "Tennis court booking service that races the midnight slot release",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBooking,
	}

	root.PersistentFlags().Bool("console", true, "use human-readable log output")

	root.AddCommand(newRunCmd())
	root.AddCommand(newDaemonCmd())
	root.AddCommand(newFetchBookingsCmd())
	root.AddCommand(newInitSheetCmd())
	root.AddCommand(newGetTokenCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func consoleFlag(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("console")
	if err != nil {
		return true
	}
	return v
}
