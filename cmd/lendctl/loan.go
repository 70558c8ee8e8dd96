package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openshelf/lending-engine-go/lending"
)

func newBorrowCommand(connect func() (*cliContext, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <patron-id> <item-id>",
		Short: "Create a loan for a patron on a catalog item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patronID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			itemID, err := uuid.Parse(args[1])
			if err != nil {
				return err
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			loan, err := cli.engine.CreateLoan(cmd.Context(), patronID, itemID)
			if err != nil {
				return err
			}

			cmd.Printf("Created loan %s, due %s\n", loan.ID, loan.DueAt.Format("2006-01-02"))

			return nil
		},
	}
}

func newReturnCommand(connect func() (*cliContext, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "return <loan-id>",
		Short: "Return a borrowed item and post any late fee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			loan, err := cli.engine.ReturnLoan(cmd.Context(), loanID)
			if err != nil {
				return err
			}

			if loan.Status == lending.StatusReturnedLate && loan.LateFee != nil {
				cmd.Printf("Returned loan %s late, fee %s\n", loan.ID, *loan.LateFee)
			} else {
				cmd.Printf("Returned loan %s\n", loan.ID)
			}

			return nil
		},
	}
}

func newRenewCommand(connect func() (*cliContext, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "renew <loan-id>",
		Short: "Extend a loan's due date by one loan period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			loan, err := cli.engine.RenewLoan(cmd.Context(), loanID)
			if err != nil {
				return err
			}

			cmd.Printf("Renewed loan %s, now due %s (%d of %d renewals used)\n",
				loan.ID, loan.DueAt.Format("2006-01-02"), loan.RenewalCount, loan.MaxRenewalsAllowed)

			return nil
		},
	}
}

func newLoanCommand(connect func() (*cliContext, error)) *cobra.Command {
	loanCmd := &cobra.Command{
		Use:   "loan",
		Short: "Close out loans without a regular return",
	}

	loanCmd.AddCommand(
		newLoanMarkCommand(connect, "lost", "Mark a loan's item as lost",
			func(cli *cliContext) markFunc { return cli.engine.MarkLost }),
		newLoanMarkCommand(connect, "damaged", "Mark a loan's item as damaged",
			func(cli *cliContext) markFunc { return cli.engine.MarkDamaged }),
		newLoanCancelCommand(connect),
	)

	return loanCmd
}

type markFunc func(ctx context.Context, loanID uuid.UUID, notes string) (lending.Loan, error)

func newLoanMarkCommand(connect func() (*cliContext, error), use string, short string, pick func(*cliContext) markFunc) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   use + " <loan-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			loan, err := pick(cli)(cmd.Context(), loanID, notes)
			if err != nil {
				return err
			}

			cmd.Printf("Loan %s is now %s\n", loan.ID, loan.Status)

			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes on what happened")

	return cmd
}

func newLoanCancelCommand(connect func() (*cliContext, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <loan-id>",
		Short: "Cancel an erroneously created loan and restore the copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			loan, err := cli.engine.CancelLoan(cmd.Context(), loanID)
			if err != nil {
				return err
			}

			cmd.Printf("Cancelled loan %s\n", loan.ID)

			return nil
		},
	}
}
