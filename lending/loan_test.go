package lending_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/lending"
)

var borrowedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func Test_NewLoan_IsActiveAndDueAfterTheLoanPeriod(t *testing.T) {
	// act
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)

	// assert
	assert.Equal(t, lending.StatusActive, loan.Status)
	assert.Equal(t, borrowedAt.Add(lending.DefaultLoanPeriod), loan.DueAt)
	assert.Equal(t, lending.DefaultMaxRenewalsAllowed, loan.MaxRenewalsAllowed)
	assert.Nil(t, loan.ReturnedAt)
	assert.Nil(t, loan.LateFee)
	assert.True(t, loan.IsOpen())
}

func Test_Loan_Renew_ExtendsDueDateAndCountsRenewal(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)
	originalDueAt := loan.DueAt

	// act
	err := loan.Renew()

	// assert
	require.NoError(t, err)
	assert.Equal(t, originalDueAt.Add(lending.DefaultLoanPeriod), loan.DueAt)
	assert.Equal(t, 1, loan.RenewalCount)
	assert.Equal(t, lending.StatusActive, loan.Status)
}

func Test_Loan_Renew_ShouldFail_OnceTheRenewalCapIsReached(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)
	for i := 0; i < lending.DefaultMaxRenewalsAllowed; i++ {
		require.NoError(t, loan.Renew())
	}
	dueAtAfterLastRenewal := loan.DueAt

	// act
	err := loan.Renew()

	// assert
	assert.ErrorIs(t, err, lending.ErrRenewalLimitExceeded)
	assert.Equal(t, dueAtAfterLastRenewal, loan.DueAt, "a rejected renewal must not move the due date")
	assert.Equal(t, lending.DefaultMaxRenewalsAllowed, loan.RenewalCount)
}

func Test_Loan_Renew_ShouldFail_OnReturnedLoan(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)
	_, err := loan.CompleteReturn(borrowedAt.AddDate(0, 0, 7))
	require.NoError(t, err)

	// act
	err = loan.Renew()

	// assert
	assert.ErrorIs(t, err, lending.ErrLoanNotActive)
}

func Test_Loan_CompleteReturn_OnTime_ClosesWithoutFee(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)
	returnedAt := loan.DueAt

	// act
	fee, err := loan.CompleteReturn(returnedAt)

	// assert
	require.NoError(t, err)
	assert.Equal(t, lending.Money(0), fee)
	assert.Equal(t, lending.StatusReturned, loan.Status)
	require.NotNil(t, loan.ReturnedAt)
	assert.Equal(t, returnedAt, *loan.ReturnedAt)
	assert.Nil(t, loan.LateFee)
	assert.False(t, loan.IsOpen())
}

func Test_Loan_CompleteReturn_Late_ClosesWithFee(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)
	returnedAt := loan.DueAt.AddDate(0, 0, 3)

	// act
	fee, err := loan.CompleteReturn(returnedAt)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3*lending.FeeRatePerDay, fee)
	assert.Equal(t, lending.StatusReturnedLate, loan.Status)
	require.NotNil(t, loan.LateFee)
	assert.Equal(t, fee, *loan.LateFee)
}

func Test_Loan_CompleteReturn_ShouldFail_WhenReturnedBeforeBorrowed(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)

	// act
	_, err := loan.CompleteReturn(borrowedAt.Add(-time.Hour))

	// assert
	assert.ErrorIs(t, err, lending.ErrInvalidReturnDate)
	assert.Equal(t, lending.StatusActive, loan.Status)
}

func Test_Loan_CompleteReturn_ShouldFail_OnClosedLoan(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)
	_, err := loan.CompleteReturn(loan.DueAt)
	require.NoError(t, err)

	// act
	_, err = loan.CompleteReturn(loan.DueAt)

	// assert
	assert.ErrorIs(t, err, lending.ErrLoanNotActive)
}

func Test_Loan_MarkLost_RecordsNotes(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)

	// act
	err := loan.MarkLost("left on a train")

	// assert
	require.NoError(t, err)
	assert.Equal(t, lending.StatusLost, loan.Status)
	assert.Equal(t, "left on a train", loan.Notes)
}

func Test_Loan_MarkDamaged_RecordsNotes(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)

	// act
	err := loan.MarkDamaged("water damage")

	// assert
	require.NoError(t, err)
	assert.Equal(t, lending.StatusDamaged, loan.Status)
	assert.Equal(t, "water damage", loan.Notes)
}

func Test_Loan_Cancel_ShouldFail_OnTerminalLoan(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)
	require.NoError(t, loan.MarkLost(""))

	// act
	err := loan.Cancel()

	// assert
	assert.ErrorIs(t, err, lending.ErrLoanNotActive)
	assert.Equal(t, lending.StatusLost, loan.Status)
}

func Test_Loan_StatusAt_DerivesOverdueForActiveLoansPastDue(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)

	// assert
	assert.Equal(t, lending.StatusActive, loan.StatusAt(loan.DueAt))
	assert.Equal(t, lending.StatusOverdue, loan.StatusAt(loan.DueAt.Add(time.Minute)))
	assert.Equal(t, lending.StatusActive, loan.Status, "the stored status never becomes Overdue")
}

func Test_Loan_StatusAt_DoesNotDeriveOverdueForClosedLoans(t *testing.T) {
	// arrange
	loan := lending.NewLoan(uuid.New(), uuid.New(), uuid.New(), borrowedAt)
	_, err := loan.CompleteReturn(loan.DueAt.AddDate(0, 0, 2))
	require.NoError(t, err)

	// act
	observed := loan.StatusAt(loan.DueAt.AddDate(0, 0, 10))

	// assert
	assert.Equal(t, lending.StatusReturnedLate, observed)
}
