package lending_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/lending"
)

func Test_NewCatalogItem_StartsWithAllCopiesAvailable(t *testing.T) {
	// act
	item, err := lending.NewCatalogItem(uuid.New(), "978-0134190440", "The Go Programming Language", 3)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, item.TotalCopies)
	assert.Equal(t, 3, item.AvailableCopies)
	assert.False(t, item.Retired)
}

func Test_NewCatalogItem_ShouldFail_WithEmptyCode(t *testing.T) {
	// act
	_, err := lending.NewCatalogItem(uuid.New(), "", "Untitled", 1)

	// assert
	assert.ErrorIs(t, err, lending.ErrEmptyCatalogCode)
}

func Test_NewCatalogItem_ShouldFail_WithNegativeTotalCopies(t *testing.T) {
	// act
	_, err := lending.NewCatalogItem(uuid.New(), "978-0134190440", "The Go Programming Language", -1)

	// assert
	assert.ErrorIs(t, err, lending.ErrNegativeTotalCopies)
}

func Test_CatalogItem_BorrowCopy_DecrementsAvailableCopies(t *testing.T) {
	// arrange
	item := givenCatalogItem(t, 2)

	// act
	err := item.BorrowCopy()

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, item.AvailableCopies)
	assert.Equal(t, 2, item.TotalCopies)
}

func Test_CatalogItem_BorrowCopy_ShouldFail_WhenNoCopiesAvailable(t *testing.T) {
	// arrange
	item := givenCatalogItem(t, 1)
	require.NoError(t, item.BorrowCopy())

	// act
	err := item.BorrowCopy()

	// assert
	assert.ErrorIs(t, err, lending.ErrNotAvailable)
	assert.Equal(t, 0, item.AvailableCopies)
}

func Test_CatalogItem_ReturnCopy_IncrementsAvailableCopies(t *testing.T) {
	// arrange
	item := givenCatalogItem(t, 2)
	require.NoError(t, item.BorrowCopy())

	// act
	err := item.ReturnCopy()

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, item.AvailableCopies)
}

func Test_CatalogItem_ReturnCopy_ShouldFail_WhenAllCopiesAreIn(t *testing.T) {
	// arrange
	item := givenCatalogItem(t, 2)

	// act
	err := item.ReturnCopy()

	// assert
	assert.ErrorIs(t, err, lending.ErrInventoryOverflow)
	assert.Equal(t, 2, item.AvailableCopies)
}

func Test_CatalogItem_Retire_KeepsInventoryCounters(t *testing.T) {
	// arrange
	item := givenCatalogItem(t, 2)
	require.NoError(t, item.BorrowCopy())

	// act
	item.Retire()

	// assert
	assert.True(t, item.Retired)
	assert.Equal(t, 1, item.AvailableCopies)
	assert.Equal(t, 2, item.TotalCopies)
}

func Test_CatalogItem_AdjustTotalCopies_PreservesCopiesOut(t *testing.T) {
	// arrange
	item := givenCatalogItem(t, 5)
	require.NoError(t, item.BorrowCopy())
	require.NoError(t, item.BorrowCopy())

	// act
	err := item.AdjustTotalCopies(3)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, item.TotalCopies)
	assert.Equal(t, 1, item.AvailableCopies)
}

func Test_CatalogItem_AdjustTotalCopies_ShouldFail_WhenShrinkingBelowCopiesOut(t *testing.T) {
	// arrange
	item := givenCatalogItem(t, 3)
	require.NoError(t, item.BorrowCopy())
	require.NoError(t, item.BorrowCopy())

	// act
	err := item.AdjustTotalCopies(1)

	// assert
	assert.ErrorIs(t, err, lending.ErrNotAvailable)
	assert.Equal(t, 3, item.TotalCopies)
}

func Test_CatalogItem_AdjustTotalCopies_ShouldFail_WithNegativeTotal(t *testing.T) {
	// arrange
	item := givenCatalogItem(t, 3)

	// act
	err := item.AdjustTotalCopies(-1)

	// assert
	assert.ErrorIs(t, err, lending.ErrNegativeTotalCopies)
}

func givenCatalogItem(t *testing.T, totalCopies int) lending.CatalogItem {
	t.Helper()

	item, err := lending.NewCatalogItem(uuid.New(), "978-0134190440", "The Go Programming Language", totalCopies)
	require.NoError(t, err)

	return item
}
