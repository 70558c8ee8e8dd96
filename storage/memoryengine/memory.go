// Package memoryengine provides an in-memory implementation of the storage
// contracts with the same optimistic-locking semantics as the Postgres engine.
// It backs the unit test suite and supports failpoint injection to exercise
// the atomicity guarantees of the engine.
package memoryengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

// Failpoint identifies an operation at which an injected error fires.
type Failpoint string

// Failpoints supported by the engine.
const (
	FailpointInsertLoan Failpoint = "insert_loan"
	FailpointUpdateLoan Failpoint = "update_loan"
	FailpointCommit     Failpoint = "commit"
)

// Engine is an in-memory storage backend. All committed state lives behind one
// mutex; units of work buffer their writes and re-validate entity versions at
// commit time, so a lost race surfaces as storage.ErrConcurrencyConflict
// exactly like in the Postgres engine.
type Engine struct {
	mu         sync.Mutex
	items      map[uuid.UUID]lending.CatalogItem
	patrons    map[uuid.UUID]lending.Patron
	loans      map[uuid.UUID]lending.Loan
	changes    []changelog.Record
	failpoints map[Failpoint]error
}

// NewEngine creates an empty in-memory storage engine.
func NewEngine() *Engine {
	return &Engine{
		items:      make(map[uuid.UUID]lending.CatalogItem),
		patrons:    make(map[uuid.UUID]lending.Patron),
		loans:      make(map[uuid.UUID]lending.Loan),
		failpoints: make(map[Failpoint]error),
	}
}

// FailOnce arms a failpoint: the next unit-of-work operation that hits it
// returns the given error, then the failpoint disarms itself.
func (e *Engine) FailOnce(point Failpoint, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.failpoints[point] = err
}

func (e *Engine) takeFailpoint(point Failpoint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err, armed := e.failpoints[point]
	if armed {
		delete(e.failpoints, point)
	}

	return err
}

// Begin opens a new unit of work.
func (e *Engine) Begin(_ context.Context) (storage.UnitOfWork, error) {
	return &unitOfWork{engine: e}, nil
}

// GetCatalogItem returns the committed catalog item.
func (e *Engine) GetCatalogItem(_ context.Context, itemID uuid.UUID) (lending.CatalogItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.getItemLocked(itemID)
}

// GetCatalogItemByCode returns the committed catalog item with the given code.
func (e *Engine) GetCatalogItemByCode(_ context.Context, code string) (lending.CatalogItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, item := range e.items {
		if item.Code == code {
			return item, nil
		}
	}

	return lending.CatalogItem{}, fmt.Errorf("%w: code %q", lending.ErrItemNotFound, code)
}

// GetPatron returns the committed patron.
func (e *Engine) GetPatron(_ context.Context, patronID uuid.UUID) (lending.Patron, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.getPatronLocked(patronID)
}

// GetLoan returns the committed loan.
func (e *Engine) GetLoan(_ context.Context, loanID uuid.UUID) (lending.Loan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.getLoanLocked(loanID)
}

// ListOpenLoans returns all committed loans with status Active.
func (e *Engine) ListOpenLoans(_ context.Context) ([]lending.Loan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	open := make([]lending.Loan, 0)
	for _, loan := range e.loans {
		if loan.IsOpen() {
			open = append(open, loan)
		}
	}

	return open, nil
}

// ListLoansByPatron returns all committed loans of one patron.
func (e *Engine) ListLoansByPatron(_ context.Context, patronID uuid.UUID) ([]lending.Loan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	loans := make([]lending.Loan, 0)
	for _, loan := range e.loans {
		if loan.PatronID == patronID {
			loans = append(loans, loan)
		}
	}

	return loans, nil
}

// ListChanges returns the committed change records for one entity in append
// order (record ids are monotonic ULIDs).
func (e *Engine) ListChanges(_ context.Context, entityID uuid.UUID) ([]changelog.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := make([]changelog.Record, 0)
	for _, record := range e.changes {
		if record.EntityID == entityID {
			records = append(records, record)
		}
	}

	return records, nil
}

func (e *Engine) getItemLocked(itemID uuid.UUID) (lending.CatalogItem, error) {
	item, ok := e.items[itemID]
	if !ok {
		return lending.CatalogItem{}, fmt.Errorf("%w: %s", lending.ErrItemNotFound, itemID)
	}

	return item, nil
}

func (e *Engine) getPatronLocked(patronID uuid.UUID) (lending.Patron, error) {
	patron, ok := e.patrons[patronID]
	if !ok {
		return lending.Patron{}, fmt.Errorf("%w: %s", lending.ErrPatronNotFound, patronID)
	}

	return patron, nil
}

func (e *Engine) getLoanLocked(loanID uuid.UUID) (lending.Loan, error) {
	loan, ok := e.loans[loanID]
	if !ok {
		return lending.Loan{}, fmt.Errorf("%w: %s", lending.ErrLoanNotFound, loanID)
	}

	return loan, nil
}

var _ storage.Storage = (*Engine)(nil)
