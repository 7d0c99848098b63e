package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConvertCommand(a *app) *cobra.Command {
	var job convertJob

	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert a statement to ledger entries",
		Long: `Convert a statement PDF or extracted text file. Output goes to the given
file or to stdout. The format is taken from --format or else from the
output file extension (.csv, .xlsx), defaulting to ledger text.`,
		Example: `  statement-ledger convert statement.pdf
  statement-ledger convert statement.pdf 2024-01.ledger
  statement-ledger convert --format csv statement.txt postings.csv`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			job.Input = args[0]
			if len(args) == 2 {
				job.Output = args[1]
			}

			res, err := a.convertFile(cmd.Context(), job, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if res.Output != stdoutName {
				printSuccess(cmd.ErrOrStderr(), fmt.Sprintf("%d transactions, %d postings (%s layout) → %s",
					res.Summary.Transactions, res.Summary.Postings, res.Summary.Layout, pathStyle.Render(res.Output)))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&job.Format, "format", "f", "", "output format: ledger, csv or xlsx")
	flags.BoolVar(&job.NoCache, "no-cache", false, "extract the PDF again even when cached")
	flags.BoolVar(&job.Force, "force", false, "do not warn when the statement was converted before")
	return cmd
}
