package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

const (
	operationMarkLost    = "mark_lost"
	operationMarkDamaged = "mark_damaged"
)

// MarkLost records that the physical copy of an active loan is gone. The
// inventory is not restored - the copy no longer exists - so no change record
// is emitted. The notes carry the annotation.
func (e *Engine) MarkLost(ctx context.Context, loanID uuid.UUID, notes string) (lending.Loan, error) {
	return e.markLoan(ctx, operationMarkLost, loanID, func(loan *lending.Loan) error {
		return loan.MarkLost(notes)
	})
}

// MarkDamaged records that the physical copy of an active loan is unusable.
// Like MarkLost, the inventory is not restored.
func (e *Engine) MarkDamaged(ctx context.Context, loanID uuid.UUID, notes string) (lending.Loan, error) {
	return e.markLoan(ctx, operationMarkDamaged, loanID, func(loan *lending.Loan) error {
		return loan.MarkDamaged(notes)
	})
}

func (e *Engine) markLoan(ctx context.Context, operation string, loanID uuid.UUID, mark func(*lending.Loan) error) (lending.Loan, error) {
	var markedLoan lending.Loan

	err := e.execute(ctx, operation, func(ctx context.Context, uow storage.UnitOfWork) error {
		loan, err := uow.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}

		if err = mark(&loan); err != nil {
			return err
		}

		if err = uow.UpdateLoan(ctx, loan); err != nil {
			return err
		}

		markedLoan = loan

		return nil
	})
	if err != nil {
		return lending.Loan{}, err
	}

	return markedLoan, nil
}
