package engine_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/engine"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage/memoryengine"
)

func Test_CreateLoan_FailureAfterInventoryDecrement_LeavesNoPartialState(t *testing.T) {
	// arrange: the loan insert fails after the inventory decrement was buffered
	f := newEngineFixture(t)
	patron := f.givenPatron(t)
	item := f.givenItem(t, 3)

	injected := errors.New("injected storage failure")
	f.store.FailOnce(memoryengine.FailpointInsertLoan, injected)

	// act
	_, err := f.engine.CreateLoan(f.ctx, patron.ID, item.ID)

	// assert: the whole unit of work was discarded
	require.ErrorIs(t, err, injected)
	assertAvailableCopies(t, f, item.ID, 3)

	loans, listErr := f.store.ListLoansByPatron(f.ctx, patron.ID)
	require.NoError(t, listErr)
	assert.Empty(t, loans)

	records, changesErr := f.store.ListChanges(f.ctx, item.ID)
	require.NoError(t, changesErr)
	assert.Len(t, records, 1, "only the intake record may exist")
}

func Test_ReturnLoan_FailureOnLoanUpdate_LeavesTheLoanOpen(t *testing.T) {
	// arrange
	f := newEngineFixture(t)
	item := f.givenItem(t, 1)
	loan := f.givenLoan(t, f.givenPatron(t), item)

	injected := errors.New("injected storage failure")
	f.store.FailOnce(memoryengine.FailpointUpdateLoan, injected)

	// act
	_, err := f.engine.ReturnLoan(f.ctx, loan.ID)

	// assert
	require.ErrorIs(t, err, injected)
	assertAvailableCopies(t, f, item.ID, 0)

	storedLoan, getErr := f.store.GetLoan(f.ctx, loan.ID)
	require.NoError(t, getErr)
	assert.Equal(t, lending.StatusActive, storedLoan.Status)
}

func Test_CreateLoan_ConcurrentBorrowsOfTheLastCopy_ExactlyOneWins(t *testing.T) {
	// arrange
	const borrowers = 8

	f := newEngineFixture(t)
	item := f.givenItem(t, 1)

	patrons := make([]lending.Patron, borrowers)
	for i := range patrons {
		patrons[i] = f.givenPatron(t)
	}

	// act: everybody grabs for the single copy at once
	var wg sync.WaitGroup
	results := make([]error, borrowers)

	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.engine.CreateLoan(f.ctx, patrons[i].ID, item.ID)
		}(i)
	}
	wg.Wait()

	// assert: one success, everybody else sees the copy as unavailable
	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}

		assert.ErrorIs(t, err, lending.ErrNotAvailable)
	}

	assert.Equal(t, 1, successes)
	assertAvailableCopies(t, f, item.ID, 0)
}

func Test_CreateLoan_ConcurrentBorrowsBySamePatron_NeverOvershootTheLimit(t *testing.T) {
	// arrange: more candidate items than the patron may hold
	const candidates = lending.DefaultMaxItemsAllowed + 3

	f := newEngineFixture(t)

	// all requests serialize on the same patron row, so allow enough retries
	// for every one of them to eventually win or observe the limit
	eng, err := engine.NewEngine(f.store,
		engine.WithClock(f.clock),
		engine.WithRetryOptions(engine.WithMaxAttempts(3*candidates)))
	require.NoError(t, err)
	f.engine = eng

	patron := f.givenPatron(t)

	items := make([]lending.CatalogItem, candidates)
	for i := range items {
		items[i] = f.givenItem(t, 1)
	}

	// act
	var wg sync.WaitGroup
	results := make([]error, candidates)

	for i := 0; i < candidates; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.engine.CreateLoan(f.ctx, patron.ID, items[i].ID)
		}(i)
	}
	wg.Wait()

	// assert
	failures := 0
	for _, err := range results {
		if err != nil {
			assert.ErrorIs(t, err, lending.ErrBorrowLimitReached)
			failures++
		}
	}
	assert.Equal(t, candidates-lending.DefaultMaxItemsAllowed, failures)

	loans, err := f.store.ListLoansByPatron(f.ctx, patron.ID)
	require.NoError(t, err)
	assert.Len(t, loans, lending.DefaultMaxItemsAllowed)
}
