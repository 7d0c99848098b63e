package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/buildinfo"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the application version",
		Args:  cobra.NoArgs,
		// Skips config loading in the root pre-run.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "statement-ledger")
			fmt.Fprintf(w, "Version:    %s\n", buildinfo.Version)
			fmt.Fprintf(w, "Commit:     %s\n", buildinfo.Commit)
			fmt.Fprintf(w, "Build Date: %s\n", buildinfo.Date)
			fmt.Fprintf(w, "Go Version: %s\n", runtime.Version())
		},
	}
}
