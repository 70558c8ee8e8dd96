package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

const operationRenewLoan = "renew_loan"

// RenewLoan extends an active loan's due date by the default loan period and
// counts the renewal. No inventory changes, so no change record is emitted.
func (e *Engine) RenewLoan(ctx context.Context, loanID uuid.UUID) (lending.Loan, error) {
	var renewedLoan lending.Loan

	err := e.execute(ctx, operationRenewLoan, func(ctx context.Context, uow storage.UnitOfWork) error {
		loan, err := uow.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}

		if err = loan.Renew(); err != nil {
			return err
		}

		if err = uow.UpdateLoan(ctx, loan); err != nil {
			return err
		}

		renewedLoan = loan

		return nil
	})
	if err != nil {
		return lending.Loan{}, err
	}

	return renewedLoan, nil
}
