package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

const operationCreateLoan = "create_loan"

// CreateLoan borrows one copy of the given catalog item for the given patron
// and returns the created loan.
//
// Preconditions, all checked inside one atomic unit of work: the patron exists
// and is eligible to borrow, the item exists, is not retired and has a copy
// available, and the patron is below the concurrent-loan cap. On any failure
// no partial state is committed.
//
// The patron row is written back unchanged (version bump only) so that two
// concurrent CreateLoan calls for the same patron serialize on the optimistic
// lock - otherwise both could pass the loan-count check and overshoot the cap.
func (e *Engine) CreateLoan(ctx context.Context, patronID uuid.UUID, itemID uuid.UUID) (lending.Loan, error) {
	var createdLoan lending.Loan

	err := e.execute(ctx, operationCreateLoan, func(ctx context.Context, uow storage.UnitOfWork) error {
		now := e.clock.Now()

		patron, err := uow.GetPatron(ctx, patronID)
		if err != nil {
			return err
		}

		if err = patron.EligibleToBorrow(now); err != nil {
			return err
		}

		item, err := uow.GetCatalogItem(ctx, itemID)
		if err != nil {
			return err
		}

		if item.Retired {
			return fmt.Errorf("%w: item %s (%s)", lending.ErrItemRetired, item.ID, item.Code)
		}

		activeLoans, err := uow.CountActiveLoans(ctx, patronID)
		if err != nil {
			return err
		}

		if activeLoans >= patron.MaxItemsAllowed {
			return fmt.Errorf("%w: patron %s has %d of %d loans out",
				lending.ErrBorrowLimitReached, patron.ID, activeLoans, patron.MaxItemsAllowed)
		}

		itemBefore := item
		if err = item.BorrowCopy(); err != nil {
			return err
		}

		if err = uow.UpdateCatalogItem(ctx, item); err != nil {
			return err
		}

		loan := lending.NewLoan(uuid.New(), patronID, itemID, now)
		if err = uow.InsertLoan(ctx, loan); err != nil {
			return err
		}

		if err = uow.UpdatePatron(ctx, patron); err != nil {
			return err
		}

		record, err := changelog.BuildCatalogItemUpdate(itemBefore, item, now, e.actingIdentity)
		if err != nil {
			return err
		}

		if err = uow.AppendChange(ctx, record); err != nil {
			return err
		}

		createdLoan = loan

		return nil
	})
	if err != nil {
		return lending.Loan{}, err
	}

	return createdLoan, nil
}
