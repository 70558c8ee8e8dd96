// Package report contains read-only consumers of committed loan and catalog
// state. They never participate in units of work; the engine's atomicity
// contract guarantees they cannot observe a loan whose paired inventory change
// has not committed.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

// OverdueLoan is one line of the overdue report.
type OverdueLoan struct {
	LoanID      uuid.UUID
	PatronID    uuid.UUID
	ItemID      uuid.UUID
	DueAt       time.Time
	DaysOverdue int
	AccruedFee  lending.Money
}

// Overdue lists all open loans whose due date has passed as of asOf, most
// overdue first. Overdue is derived here, never stored: an open loan past due
// reads as StatusOverdue via Loan.StatusAt. The accrued fee comes from the
// same pure function the engine posts with at return time, so report and
// ledger agree for the same inputs.
func Overdue(ctx context.Context, reader storage.Reader, asOf time.Time) ([]OverdueLoan, error) {
	openLoans, err := reader.ListOpenLoans(ctx)
	if err != nil {
		return nil, err
	}

	overdue := make([]OverdueLoan, 0)

	for _, loan := range openLoans {
		if loan.StatusAt(asOf) != lending.StatusOverdue {
			continue
		}

		overdue = append(overdue, OverdueLoan{
			LoanID:      loan.ID,
			PatronID:    loan.PatronID,
			ItemID:      loan.ItemID,
			DueAt:       loan.DueAt,
			DaysOverdue: lending.DaysOverdue(loan.DueAt, asOf),
			AccruedFee:  lending.LateFeeAmount(loan.DueAt, nil, asOf),
		})
	}

	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].DueAt.Before(overdue[j].DueAt)
	})

	return overdue, nil
}
