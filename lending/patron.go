package lending

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxItemsAllowed is the policy default for concurrently active loans
// per patron.
const DefaultMaxItemsAllowed = 5

// Patron is a library member who can borrow catalog items.
//
// Patrons are deactivated rather than deleted once any loan references them.
type Patron struct {
	ID                  uuid.UUID
	MembershipCode      string // unique
	ContactAddress      string // unique, compared case-insensitively (stored lowercased)
	Active              bool
	EnrolledAt          time.Time
	MembershipExpiresAt time.Time
	MaxItemsAllowed     int
	OutstandingFees     Money
	Version             uint
}

// EnrollPatron creates an active patron with the default borrow limit.
// The membership expiry must be strictly after the enrollment date.
func EnrollPatron(
	id uuid.UUID,
	membershipCode string,
	contactAddress string,
	enrolledAt time.Time,
	membershipExpiresAt time.Time,
) (Patron, error) {

	if membershipCode == "" {
		return Patron{}, ErrEmptyMembershipCode
	}

	if contactAddress == "" {
		return Patron{}, ErrEmptyContactAddress
	}

	if !membershipExpiresAt.After(enrolledAt) {
		return Patron{}, fmt.Errorf("%w: enrolled %s, expires %s",
			ErrInvalidMembershipExpiry, enrolledAt.Format(time.RFC3339), membershipExpiresAt.Format(time.RFC3339))
	}

	return Patron{
		ID:                  id,
		MembershipCode:      membershipCode,
		ContactAddress:      strings.ToLower(contactAddress),
		Active:              true,
		EnrolledAt:          enrolledAt,
		MembershipExpiresAt: membershipExpiresAt,
		MaxItemsAllowed:     DefaultMaxItemsAllowed,
	}, nil
}

// EligibleToBorrow reports whether the patron may borrow at the given time.
// It returns ErrMemberNotActive or ErrMembershipExpired with context, or nil.
//
// The concurrent-loan cap is not checked here: it is a property of the patron
// and the loan collection together and therefore enforced by the engine.
func (p Patron) EligibleToBorrow(now time.Time) error {
	if !p.Active {
		return fmt.Errorf("%w: patron %s", ErrMemberNotActive, p.ID)
	}

	if p.MembershipExpiresAt.Before(now) {
		return fmt.Errorf("%w: patron %s, expired %s",
			ErrMembershipExpired, p.ID, p.MembershipExpiresAt.Format(time.RFC3339))
	}

	return nil
}

// Deactivate turns the patron inactive. Loan history is kept.
func (p *Patron) Deactivate() {
	p.Active = false
}

// AddFee posts a late fee to the patron's outstanding balance.
func (p *Patron) AddFee(amount Money) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeFeeAmount, amount)
	}

	p.OutstandingFees += amount

	return nil
}

// PayFee reduces the outstanding balance. Paying more than is owed is
// rejected rather than producing a credit.
func (p *Patron) PayFee(amount Money) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeFeeAmount, amount)
	}

	if amount > p.OutstandingFees {
		return fmt.Errorf("%w: paying %s, owed %s", ErrFeePaymentTooLarge, amount, p.OutstandingFees)
	}

	p.OutstandingFees -= amount

	return nil
}
