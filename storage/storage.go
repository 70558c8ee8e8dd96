// Package storage defines the contracts between the lending engine and its
// storage backends: a Storage that opens atomic units of work plus read-only
// queries, and the UnitOfWork through which all entity reads and versioned
// writes of one engine operation flow.
//
// Any backend must uphold the same contract: all writes of one unit of work
// commit together or not at all, no partial mutation is visible to other
// callers, and every versioned write is conditioned on the version the unit of
// work read - a lost race surfaces as ErrConcurrencyConflict and the whole
// unit of work can safely be retried.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
)

// Storage is a backend for the lending engine.
type Storage interface {
	// Begin opens a new atomic unit of work.
	Begin(ctx context.Context) (UnitOfWork, error)

	Reader
}

// Reader is the read-only query surface, usable outside any unit of work.
// Reporting consumers only ever see committed state.
type Reader interface {
	GetCatalogItem(ctx context.Context, itemID uuid.UUID) (lending.CatalogItem, error)
	GetCatalogItemByCode(ctx context.Context, code string) (lending.CatalogItem, error)
	GetPatron(ctx context.Context, patronID uuid.UUID) (lending.Patron, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (lending.Loan, error)

	// ListOpenLoans returns all loans that are still out (status Active).
	ListOpenLoans(ctx context.Context) ([]lending.Loan, error)

	// ListLoansByPatron returns all loans of one patron, historical included.
	ListLoansByPatron(ctx context.Context, patronID uuid.UUID) ([]lending.Loan, error)

	// ListChanges returns the change records for one entity in record order.
	ListChanges(ctx context.Context, entityID uuid.UUID) ([]changelog.Record, error)
}

// UnitOfWork is one atomic, isolated execution boundary. All reads observe a
// consistent committed state; all writes are buffered until Commit.
//
// Update methods compare-and-set on the Version field the entity was read
// with: when the row changed underneath, Commit (or the update itself,
// depending on the backend) fails with ErrConcurrencyConflict and nothing is
// persisted. Rollback after Commit is a no-op, so `defer uow.Rollback(ctx)` is
// always safe.
type UnitOfWork interface {
	GetCatalogItem(ctx context.Context, itemID uuid.UUID) (lending.CatalogItem, error)
	GetPatron(ctx context.Context, patronID uuid.UUID) (lending.Patron, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (lending.Loan, error)

	// CountActiveLoans returns the number of loans with status Active for the
	// given patron, as of the unit of work's consistent view.
	CountActiveLoans(ctx context.Context, patronID uuid.UUID) (int, error)

	InsertCatalogItem(ctx context.Context, item lending.CatalogItem) error
	UpdateCatalogItem(ctx context.Context, item lending.CatalogItem) error

	InsertPatron(ctx context.Context, patron lending.Patron) error
	UpdatePatron(ctx context.Context, patron lending.Patron) error

	InsertLoan(ctx context.Context, loan lending.Loan) error
	UpdateLoan(ctx context.Context, loan lending.Loan) error

	// AppendChange delivers a record to the Change Log Sink within this unit
	// of work: the record persists if and only if the unit of work commits.
	AppendChange(ctx context.Context, record changelog.Record) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
