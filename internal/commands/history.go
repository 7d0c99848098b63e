package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/history"
)

func newHistoryCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.History.Enabled {
				return fmt.Errorf("conversion history is disabled in the configuration")
			}
			store, err := history.Open(a.cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfof(cmd.ErrOrStderr(), "no conversions recorded in %s", pathStyle.Render(a.cfg.History.Path))
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(mutedStyle).
				Headers("CONVERTED", "SOURCE", "OUTPUT", "LAYOUT", "TXNS", "POSTINGS", "DIGEST").
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return lipgloss.NewStyle()
				})
			for _, r := range records {
				t.Row(
					r.ConvertedAt.Local().Format("2006-01-02 15:04"),
					r.Source,
					r.Output,
					string(r.Layout),
					strconv.Itoa(r.Transactions),
					strconv.Itoa(r.Postings),
					r.Digest[:min(12, len(r.Digest))],
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of conversions to show, 0 for all")
	return cmd
}
