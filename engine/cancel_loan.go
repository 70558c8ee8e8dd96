package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

const operationCancelLoan = "cancel_loan"

// CancelLoan reverses a data-entry mistake: the inventory decrement of the
// borrow is undone and the loan becomes Cancelled. No fee is computed and the
// return time stays unset - this is a correction, not a return.
func (e *Engine) CancelLoan(ctx context.Context, loanID uuid.UUID) (lending.Loan, error) {
	var cancelledLoan lending.Loan

	err := e.execute(ctx, operationCancelLoan, func(ctx context.Context, uow storage.UnitOfWork) error {
		now := e.clock.Now()

		loan, err := uow.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}

		if err = loan.Cancel(); err != nil {
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

		record, err := changelog.BuildCatalogItemUpdate(itemBefore, item, now, e.actingIdentity)
		if err != nil {
			return err
		}

		if err = uow.AppendChange(ctx, record); err != nil {
			return err
		}

		cancelledLoan = loan

		return nil
	})
	if err != nil {
		return lending.Loan{}, err
	}

	return cancelledLoan, nil
}
