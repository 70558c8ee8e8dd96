package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/lending-engine-go/report"
)

func newOverdueCommand(connect func() (*cliContext, error)) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List all open loans past their due date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reference := time.Now()
			if asOf != "" {
				parsed, err := time.Parse("2006-01-02", asOf)
				if err != nil {
					return err
				}
				reference = parsed
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			overdue, err := report.Overdue(cmd.Context(), cli.store, reference)
			if err != nil {
				return err
			}

			if len(overdue) == 0 {
				cmd.Println("No overdue loans.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LOAN\tPATRON\tITEM\tDUE\tDAYS\tFEE")
			for _, line := range overdue {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					line.LoanID, line.PatronID, line.ItemID,
					line.DueAt.Format("2006-01-02"), line.DaysOverdue, line.AccruedFee)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date, YYYY-MM-DD (defaults to now)")

	return cmd
}
