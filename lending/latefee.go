package lending

import "time"

// Lending policy defaults.
const (
	// DefaultLoanPeriod is the time between borrowing and the due date, and
	// also the extension granted by each renewal.
	DefaultLoanPeriod = 14 * 24 * time.Hour

	// DefaultMaxRenewalsAllowed is how often a loan may be renewed.
	DefaultMaxRenewalsAllowed = 2

	// FeeRatePerDay is the late fee charged per day overdue: 0.50 per day.
	FeeRatePerDay = Money(50)
)

// DaysOverdue returns the number of whole days ref lies past dueAt, never
// negative. A loan returned within the due day itself is not overdue.
func DaysOverdue(dueAt time.Time, ref time.Time) int {
	if !ref.After(dueAt) {
		return 0
	}

	return int(ref.Sub(dueAt) / (24 * time.Hour))
}

// LateFeeAmount computes the late fee for a loan as a pure function, reusable
// outside the engine, e.g. for an overdue report.
//
// For a returned loan pass its return time; for a still-open loan pass nil and
// the fee accrues up to asOf. The engine posts exactly this amount at return
// time, so report and ledger can never disagree for the same inputs.
func LateFeeAmount(dueAt time.Time, returnedAt *time.Time, asOf time.Time) Money {
	ref := asOf
	if returnedAt != nil {
		ref = *returnedAt
	}

	return Money(DaysOverdue(dueAt, ref)) * FeeRatePerDay
}
