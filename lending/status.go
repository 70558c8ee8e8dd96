package lending

import (
	"errors"
	"fmt"
)

// LoanStatus is the closed set of lifecycle states of a Loan. The zero value is
// not a valid status; loans are created as StatusActive and every transition
// goes through Loan methods which consult the transition table below.
type LoanStatus int

const (
	// StatusActive is the only non-terminal status: the copy is out.
	StatusActive LoanStatus = iota + 1

	// StatusReturned means the copy came back on or before the due date.
	StatusReturned

	// StatusOverdue is a derived, read-time view of an active loan whose due
	// date has passed. It is never stored; see Loan.StatusAt.
	StatusOverdue

	// StatusReturnedLate means the copy came back after the due date.
	StatusReturnedLate

	// StatusLost means the copy is gone; inventory is not restored.
	StatusLost

	// StatusDamaged means the copy is unusable; inventory is not restored.
	StatusDamaged

	// StatusCancelled reverses a data-entry mistake; inventory is restored.
	StatusCancelled
)

// ErrUnknownLoanStatus is returned when parsing an unrecognized status string.
var ErrUnknownLoanStatus = errors.New("unknown loan status")

var statusNames = map[LoanStatus]string{
	StatusActive:       "Active",
	StatusReturned:     "Returned",
	StatusOverdue:      "Overdue",
	StatusReturnedLate: "ReturnedLate",
	StatusLost:         "Lost",
	StatusDamaged:      "Damaged",
	StatusCancelled:    "Cancelled",
}

// Every legal stored transition starts at StatusActive; all targets except
// StatusActive itself (renewal) are terminal. StatusOverdue is absent on
// purpose: it is derived, never stored.
var legalTransitions = map[LoanStatus][]LoanStatus{
	StatusActive: {
		StatusActive, // renew
		StatusReturned,
		StatusReturnedLate,
		StatusLost,
		StatusDamaged,
		StatusCancelled,
	},
}

// String returns the canonical name of the status.
func (s LoanStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("LoanStatus(%d)", int(s))
}

// IsTerminal reports whether no further transition is possible from s.
func (s LoanStatus) IsTerminal() bool {
	return len(legalTransitions[s]) == 0
}

// CanTransitionTo reports whether the transition from s to target is legal.
func (s LoanStatus) CanTransitionTo(target LoanStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == target {
			return true
		}
	}

	return false
}

// ParseLoanStatus converts a stored status name back into a LoanStatus.
func ParseLoanStatus(name string) (LoanStatus, error) {
	for status, statusName := range statusNames {
		if statusName == name {
			return status, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownLoanStatus, name)
}
