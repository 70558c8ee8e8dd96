package lending

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Loan links one borrowing event to its lifecycle state. It references one
// Patron and one CatalogItem; the references are preserved even if the
// referenced entity is later retired or deactivated. Loans are never deleted.
//
// Construct with NewLoan; every later field change goes through Renew,
// CompleteReturn, MarkLost, MarkDamaged or Cancel, which enforce the status
// transition table.
type Loan struct {
	ID                 uuid.UUID
	PatronID           uuid.UUID
	ItemID             uuid.UUID
	BorrowedAt         time.Time
	DueAt              time.Time
	ReturnedAt         *time.Time
	Status             LoanStatus
	LateFee            *Money
	FeePaid            bool
	RenewalCount       int
	MaxRenewalsAllowed int
	Notes              string
	Version            uint
}

// NewLoan creates an active loan borrowed now and due after the default loan
// period. Only the borrow operation creates loans.
func NewLoan(id uuid.UUID, patronID uuid.UUID, itemID uuid.UUID, borrowedAt time.Time) Loan {
	return Loan{
		ID:                 id,
		PatronID:           patronID,
		ItemID:             itemID,
		BorrowedAt:         borrowedAt,
		DueAt:              borrowedAt.Add(DefaultLoanPeriod),
		Status:             StatusActive,
		MaxRenewalsAllowed: DefaultMaxRenewalsAllowed,
	}
}

// transition moves the loan to target if the status table allows it.
func (l *Loan) transition(target LoanStatus) error {
	if !l.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: loan %s is %s, cannot become %s",
			ErrLoanNotActive, l.ID, l.Status, target)
	}

	l.Status = target

	return nil
}

// Renew extends the due date by the default loan period and counts the
// renewal. Fails with ErrRenewalLimitExceeded once the cap is reached and with
// ErrLoanNotActive on a terminal loan.
func (l *Loan) Renew() error {
	if l.Status != StatusActive {
		return fmt.Errorf("%w: loan %s is %s", ErrLoanNotActive, l.ID, l.Status)
	}

	if l.RenewalCount >= l.MaxRenewalsAllowed {
		return fmt.Errorf("%w: loan %s has been renewed %d of %d times",
			ErrRenewalLimitExceeded, l.ID, l.RenewalCount, l.MaxRenewalsAllowed)
	}

	if err := l.transition(StatusActive); err != nil {
		return err
	}

	l.DueAt = l.DueAt.Add(DefaultLoanPeriod)
	l.RenewalCount++

	return nil
}

// CompleteReturn closes the loan at returnedAt and returns the late fee to be
// posted to the patron's ledger (zero when returned on time). On time the loan
// becomes StatusReturned with no fee; late it becomes StatusReturnedLate with
// the fee from LateFeeAmount.
func (l *Loan) CompleteReturn(returnedAt time.Time) (Money, error) {
	if l.Status != StatusActive {
		return 0, fmt.Errorf("%w: loan %s is %s", ErrLoanNotActive, l.ID, l.Status)
	}

	if returnedAt.Before(l.BorrowedAt) {
		return 0, fmt.Errorf("%w: borrowed %s, returned %s",
			ErrInvalidReturnDate, l.BorrowedAt.Format(time.RFC3339), returnedAt.Format(time.RFC3339))
	}

	fee := LateFeeAmount(l.DueAt, &returnedAt, returnedAt)

	target := StatusReturned
	if fee > 0 {
		target = StatusReturnedLate
	}

	if err := l.transition(target); err != nil {
		return 0, err
	}

	l.ReturnedAt = &returnedAt

	if fee > 0 {
		l.LateFee = &fee
	} else {
		l.LateFee = nil
	}

	return fee, nil
}

// MarkLost records that the physical copy is gone. The inventory is not
// restored and no replacement fee is charged; the notes carry the annotation.
func (l *Loan) MarkLost(notes string) error {
	if err := l.transition(StatusLost); err != nil {
		return err
	}

	l.Notes = notes

	return nil
}

// MarkDamaged records that the physical copy is unusable. Like MarkLost the
// inventory is not restored.
func (l *Loan) MarkDamaged(notes string) error {
	if err := l.transition(StatusDamaged); err != nil {
		return err
	}

	l.Notes = notes

	return nil
}

// Cancel reverses a data-entry mistake. The caller is responsible for undoing
// the inventory decrement in the same unit of work.
func (l *Loan) Cancel() error {
	return l.transition(StatusCancelled)
}

// IsOpen reports whether the loan is still out, i.e. not in a terminal state.
func (l Loan) IsOpen() bool {
	return l.Status == StatusActive
}

// StatusAt returns the status as observed at asOf: an active loan whose due
// date has passed reads as StatusOverdue. Overdue is never stored, it is
// always derived here.
func (l Loan) StatusAt(asOf time.Time) LoanStatus {
	if l.Status == StatusActive && asOf.After(l.DueAt) {
		return StatusOverdue
	}

	return l.Status
}
