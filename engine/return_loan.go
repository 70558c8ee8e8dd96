package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

const operationReturnLoan = "return_loan"

// ReturnLoan closes an active loan: it sets the return time, computes the late
// fee (if any) with the same pure function the overdue report uses, puts the
// copy back into the available pool, and posts the fee to the patron's
// outstanding balance - all within one unit of work.
func (e *Engine) ReturnLoan(ctx context.Context, loanID uuid.UUID) (lending.Loan, error) {
	var returnedLoan lending.Loan

	err := e.execute(ctx, operationReturnLoan, func(ctx context.Context, uow storage.UnitOfWork) error {
		now := e.clock.Now()

		loan, err := uow.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}

		fee, err := loan.CompleteReturn(now)
		if err != nil {
			return err
		}

		item, err := uow.GetCatalogItem(ctx, loan.ItemID)
		if err != nil {
			return err
		}

		itemBefore := item
		if err = item.ReturnCopy(); err != nil {
			return err
		}

		if err = uow.UpdateLoan(ctx, loan); err != nil {
			return err
		}

		if err = uow.UpdateCatalogItem(ctx, item); err != nil {
			return err
		}

		// Fee posting is part of the same unit of work as the return itself.
		if fee > 0 && !loan.FeePaid {
			patron, patronErr := uow.GetPatron(ctx, loan.PatronID)
			if patronErr != nil {
				return patronErr
			}

			if patronErr = patron.AddFee(fee); patronErr != nil {
				return patronErr
			}

			if patronErr = uow.UpdatePatron(ctx, patron); patronErr != nil {
				return patronErr
			}
		}

		record, err := changelog.BuildCatalogItemUpdate(itemBefore, item, now, e.actingIdentity)
		if err != nil {
			return err
		}

		if err = uow.AppendChange(ctx, record); err != nil {
			return err
		}

		returnedLoan = loan

		return nil
	})
	if err != nil {
		return lending.Loan{}, err
	}

	return returnedLoan, nil
}
