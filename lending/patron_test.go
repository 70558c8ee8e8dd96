package lending_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/lending"
)

var enrollmentDate = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func Test_EnrollPatron_CreatesActivePatronWithDefaults(t *testing.T) {
	// act
	patron, err := lending.EnrollPatron(
		uuid.New(), "M-1001", "Reader@Example.org", enrollmentDate, enrollmentDate.AddDate(1, 0, 0))

	// assert
	require.NoError(t, err)
	assert.True(t, patron.Active)
	assert.Equal(t, lending.DefaultMaxItemsAllowed, patron.MaxItemsAllowed)
	assert.Equal(t, lending.Money(0), patron.OutstandingFees)
	assert.Equal(t, "reader@example.org", patron.ContactAddress, "contact address is stored lowercased")
}

func Test_EnrollPatron_ShouldFail_WithEmptyMembershipCode(t *testing.T) {
	// act
	_, err := lending.EnrollPatron(uuid.New(), "", "reader@example.org", enrollmentDate, enrollmentDate.AddDate(1, 0, 0))

	// assert
	assert.ErrorIs(t, err, lending.ErrEmptyMembershipCode)
}

func Test_EnrollPatron_ShouldFail_WithEmptyContactAddress(t *testing.T) {
	// act
	_, err := lending.EnrollPatron(uuid.New(), "M-1001", "", enrollmentDate, enrollmentDate.AddDate(1, 0, 0))

	// assert
	assert.ErrorIs(t, err, lending.ErrEmptyContactAddress)
}

func Test_EnrollPatron_ShouldFail_WhenExpiryIsNotAfterEnrollment(t *testing.T) {
	// act
	_, err := lending.EnrollPatron(uuid.New(), "M-1001", "reader@example.org", enrollmentDate, enrollmentDate)

	// assert
	assert.ErrorIs(t, err, lending.ErrInvalidMembershipExpiry)
}

func Test_Patron_EligibleToBorrow_WithActiveUnexpiredMembership(t *testing.T) {
	// arrange
	patron := givenPatron(t)

	// act
	err := patron.EligibleToBorrow(enrollmentDate.AddDate(0, 6, 0))

	// assert
	assert.NoError(t, err)
}

func Test_Patron_EligibleToBorrow_ShouldFail_WhenDeactivated(t *testing.T) {
	// arrange
	patron := givenPatron(t)
	patron.Deactivate()

	// act
	err := patron.EligibleToBorrow(enrollmentDate.AddDate(0, 6, 0))

	// assert
	assert.ErrorIs(t, err, lending.ErrMemberNotActive)
}

func Test_Patron_EligibleToBorrow_ShouldFail_WhenMembershipExpired(t *testing.T) {
	// arrange
	patron := givenPatron(t)

	// act
	err := patron.EligibleToBorrow(patron.MembershipExpiresAt.AddDate(0, 0, 1))

	// assert
	assert.ErrorIs(t, err, lending.ErrMembershipExpired)
}

func Test_Patron_AddFee_IncreasesOutstandingBalance(t *testing.T) {
	// arrange
	patron := givenPatron(t)

	// act
	err := patron.AddFee(lending.MoneyFromCents(150))

	// assert
	require.NoError(t, err)
	assert.Equal(t, lending.MoneyFromCents(150), patron.OutstandingFees)
}

func Test_Patron_AddFee_ShouldFail_WithNegativeAmount(t *testing.T) {
	// arrange
	patron := givenPatron(t)

	// act
	err := patron.AddFee(lending.MoneyFromCents(-1))

	// assert
	assert.ErrorIs(t, err, lending.ErrNegativeFeeAmount)
}

func Test_Patron_PayFee_ReducesOutstandingBalance(t *testing.T) {
	// arrange
	patron := givenPatron(t)
	require.NoError(t, patron.AddFee(lending.MoneyFromCents(200)))

	// act
	err := patron.PayFee(lending.MoneyFromCents(150))

	// assert
	require.NoError(t, err)
	assert.Equal(t, lending.MoneyFromCents(50), patron.OutstandingFees)
}

func Test_Patron_PayFee_ShouldFail_WhenPayingMoreThanOwed(t *testing.T) {
	// arrange
	patron := givenPatron(t)
	require.NoError(t, patron.AddFee(lending.MoneyFromCents(100)))

	// act
	err := patron.PayFee(lending.MoneyFromCents(101))

	// assert
	assert.ErrorIs(t, err, lending.ErrFeePaymentTooLarge)
	assert.Equal(t, lending.MoneyFromCents(100), patron.OutstandingFees)
}

func givenPatron(t *testing.T) lending.Patron {
	t.Helper()

	patron, err := lending.EnrollPatron(
		uuid.New(), "M-1001", "reader@example.org", enrollmentDate, enrollmentDate.AddDate(1, 0, 0))
	require.NoError(t, err)

	return patron
}
