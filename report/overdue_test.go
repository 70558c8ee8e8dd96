package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/engine"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/report"
	"github.com/openshelf/lending-engine-go/storage/memoryengine"
)

var reportTestTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func Test_Overdue_ListsOnlyOpenLoansPastDue_MostOverdueFirst(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEngine()
	clock := &lending.FixedClock{Instant: reportTestTime}

	eng, err := engine.NewEngine(store, engine.WithClock(clock))
	require.NoError(t, err)

	patron, err := eng.EnrollPatron(ctx, "M-1001", "reader@example.org", reportTestTime.AddDate(2, 0, 0))
	require.NoError(t, err)

	firstItem, err := eng.AddCatalogItem(ctx, "978-0134190440", "The Go Programming Language", 1)
	require.NoError(t, err)
	secondItem, err := eng.AddCatalogItem(ctx, "978-0136820109", "Effective Go Habits", 1)
	require.NoError(t, err)
	thirdItem, err := eng.AddCatalogItem(ctx, "978-0201616224", "The Pragmatic Programmer", 1)
	require.NoError(t, err)

	// oldest loan first: overdue by 5 days at the reference time
	oldLoan, err := eng.CreateLoan(ctx, patron.ID, firstItem.ID)
	require.NoError(t, err)

	clock.Instant = clock.Instant.AddDate(0, 0, 2)
	recentLoan, err := eng.CreateLoan(ctx, patron.ID, secondItem.ID)
	require.NoError(t, err)

	// this one is returned before the reference time and must not show up
	returnedLoan, err := eng.CreateLoan(ctx, patron.ID, thirdItem.ID)
	require.NoError(t, err)
	_, err = eng.ReturnLoan(ctx, returnedLoan.ID)
	require.NoError(t, err)

	asOf := oldLoan.DueAt.AddDate(0, 0, 5)

	// act
	overdue, err := report.Overdue(ctx, store, asOf)

	// assert
	require.NoError(t, err)
	require.Len(t, overdue, 2)

	assert.Equal(t, oldLoan.ID, overdue[0].LoanID)
	assert.Equal(t, 5, overdue[0].DaysOverdue)
	assert.Equal(t, 5*lending.FeeRatePerDay, overdue[0].AccruedFee)

	assert.Equal(t, recentLoan.ID, overdue[1].LoanID)
	assert.Equal(t, 3, overdue[1].DaysOverdue)
	assert.Equal(t, patron.ID, overdue[1].PatronID)
	assert.Equal(t, secondItem.ID, overdue[1].ItemID)
}

func Test_Overdue_IsEmptyWhenNothingIsPastDue(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEngine()
	clock := &lending.FixedClock{Instant: reportTestTime}

	eng, err := engine.NewEngine(store, engine.WithClock(clock))
	require.NoError(t, err)

	patron, err := eng.EnrollPatron(ctx, "M-1001", "reader@example.org", reportTestTime.AddDate(1, 0, 0))
	require.NoError(t, err)

	item, err := eng.AddCatalogItem(ctx, "978-0134190440", "The Go Programming Language", 1)
	require.NoError(t, err)

	loan, err := eng.CreateLoan(ctx, patron.ID, item.ID)
	require.NoError(t, err)

	// act: exactly at the due instant the loan is not yet overdue
	overdue, err := report.Overdue(ctx, store, loan.DueAt)

	// assert
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func Test_Overdue_AgreesWithTheFeePostedAtReturnTime(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memoryengine.NewEngine()
	clock := &lending.FixedClock{Instant: reportTestTime}

	eng, err := engine.NewEngine(store, engine.WithClock(clock))
	require.NoError(t, err)

	patron, err := eng.EnrollPatron(ctx, "M-1001", "reader@example.org", reportTestTime.AddDate(1, 0, 0))
	require.NoError(t, err)

	item, err := eng.AddCatalogItem(ctx, "978-0134190440", "The Go Programming Language", 1)
	require.NoError(t, err)

	loan, err := eng.CreateLoan(ctx, patron.ID, item.ID)
	require.NoError(t, err)

	clock.Instant = loan.DueAt.AddDate(0, 0, 6)

	// act: the report's accrued fee at the return instant, then the actual return
	overdue, err := report.Overdue(ctx, store, clock.Instant)
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	returned, err := eng.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)

	// assert
	require.NotNil(t, returned.LateFee)
	assert.Equal(t, overdue[0].AccruedFee, *returned.LateFee)
}
