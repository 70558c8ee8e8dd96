package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openshelf/lending-engine-go/lending"
)

func newPatronCommand(connect func() (*cliContext, error)) *cobra.Command {
	patronCmd := &cobra.Command{
		Use:   "patron",
		Short: "Manage patrons",
	}

	patronCmd.AddCommand(
		newPatronEnrollCommand(connect),
		newPatronDeactivateCommand(connect),
		newPatronPayCommand(connect),
	)

	return patronCmd
}

func newPatronEnrollCommand(connect func() (*cliContext, error)) *cobra.Command {
	var code string
	var contact string
	var expires string

	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll a new patron",
		RunE: func(cmd *cobra.Command, _ []string) error {
			expiresAt, err := time.Parse("2006-01-02", expires)
			if err != nil {
				return fmt.Errorf("parsing --expires: %w", err)
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			patron, err := cli.engine.EnrollPatron(cmd.Context(), code, contact, expiresAt)
			if err != nil {
				return err
			}

			cmd.Printf("Enrolled patron %s (%s, membership until %s)\n",
				patron.ID, patron.MembershipCode, patron.MembershipExpiresAt.Format("2006-01-02"))

			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "membership code, unique per patron (required)")
	cmd.Flags().StringVar(&contact, "contact", "", "contact address (required)")
	cmd.Flags().StringVar(&expires, "expires", "", "membership expiry date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("contact")
	_ = cmd.MarkFlagRequired("expires")

	return cmd
}

func newPatronDeactivateCommand(connect func() (*cliContext, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <patron-id>",
		Short: "Deactivate a patron so they can no longer borrow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patronID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			patron, err := cli.engine.DeactivatePatron(cmd.Context(), patronID)
			if err != nil {
				return err
			}

			cmd.Printf("Deactivated patron %s (%s)\n", patron.ID, patron.MembershipCode)

			return nil
		},
	}
}

func newPatronPayCommand(connect func() (*cliContext, error)) *cobra.Command {
	var cents int64

	cmd := &cobra.Command{
		Use:   "pay <patron-id>",
		Short: "Record a fee payment against a patron's outstanding balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patronID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			cli, err := connect()
			if err != nil {
				return err
			}
			defer cli.close()

			patron, err := cli.engine.RecordFeePayment(cmd.Context(), patronID, lending.MoneyFromCents(cents))
			if err != nil {
				return err
			}

			cmd.Printf("Recorded payment, patron %s now owes %s\n", patron.ID, patron.OutstandingFees)

			return nil
		},
	}

	cmd.Flags().Int64Var(&cents, "cents", 0, "payment amount in cents (required)")
	_ = cmd.MarkFlagRequired("cents")

	return cmd
}
