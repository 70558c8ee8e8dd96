package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

const (
	operationEnrollPatron     = "enroll_patron"
	operationDeactivatePatron = "deactivate_patron"
	operationRecordFeePayment = "record_fee_payment"
)

// EnrollPatron creates an active patron with the default borrow limit.
func (e *Engine) EnrollPatron(ctx context.Context, membershipCode string, contactAddress string, membershipExpiresAt time.Time) (lending.Patron, error) {
	var enrolledPatron lending.Patron

	err := e.execute(ctx, operationEnrollPatron, func(ctx context.Context, uow storage.UnitOfWork) error {
		now := e.clock.Now()

		patron, err := lending.EnrollPatron(uuid.New(), membershipCode, contactAddress, now, membershipExpiresAt)
		if err != nil {
			return err
		}

		if err = uow.InsertPatron(ctx, patron); err != nil {
			return err
		}

		enrolledPatron = patron

		return nil
	})
	if err != nil {
		return lending.Patron{}, err
	}

	return enrolledPatron, nil
}

// DeactivatePatron turns a patron inactive. Patrons are deactivated rather
// than deleted once any loan references them; their loan history is kept.
func (e *Engine) DeactivatePatron(ctx context.Context, patronID uuid.UUID) (lending.Patron, error) {
	var deactivatedPatron lending.Patron

	err := e.execute(ctx, operationDeactivatePatron, func(ctx context.Context, uow storage.UnitOfWork) error {
		patron, err := uow.GetPatron(ctx, patronID)
		if err != nil {
			return err
		}

		patron.Deactivate()

		if err = uow.UpdatePatron(ctx, patron); err != nil {
			return err
		}

		deactivatedPatron = patron

		return nil
	})
	if err != nil {
		return lending.Patron{}, err
	}

	return deactivatedPatron, nil
}

// RecordFeePayment reduces a patron's outstanding fees by the paid amount.
func (e *Engine) RecordFeePayment(ctx context.Context, patronID uuid.UUID, amount lending.Money) (lending.Patron, error) {
	var paidPatron lending.Patron

	err := e.execute(ctx, operationRecordFeePayment, func(ctx context.Context, uow storage.UnitOfWork) error {
		patron, err := uow.GetPatron(ctx, patronID)
		if err != nil {
			return err
		}

		if err = patron.PayFee(amount); err != nil {
			return err
		}

		if err = uow.UpdatePatron(ctx, patron); err != nil {
			return err
		}

		paidPatron = patron

		return nil
	})
	if err != nil {
		return lending.Patron{}, err
	}

	return paidPatron, nil
}
