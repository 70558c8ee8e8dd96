package postgresengine

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
	"github.com/openshelf/lending-engine-go/storage/postgresengine/internal/adapters"
)

// unitOfWork runs all reads and writes of one engine operation on a single
// database transaction. Writes execute immediately within the transaction;
// versioned updates fail fast with storage.ErrConcurrencyConflict, after which
// the engine rolls the whole transaction back - nothing becomes visible to
// other callers until Commit.
type unitOfWork struct {
	engine *Engine
	tx     adapters.DBTx
	closed bool
}

func (u *unitOfWork) guard() error {
	if u.closed {
		return storage.ErrUnitOfWorkClosed
	}

	return nil
}

func (u *unitOfWork) GetCatalogItem(ctx context.Context, itemID uuid.UUID) (lending.CatalogItem, error) {
	if err := u.guard(); err != nil {
		return lending.CatalogItem{}, err
	}

	return u.engine.getCatalogItem(ctx, u.tx, colID, itemID.String())
}

func (u *unitOfWork) GetPatron(ctx context.Context, patronID uuid.UUID) (lending.Patron, error) {
	if err := u.guard(); err != nil {
		return lending.Patron{}, err
	}

	return u.engine.getPatron(ctx, u.tx, patronID)
}

func (u *unitOfWork) GetLoan(ctx context.Context, loanID uuid.UUID) (lending.Loan, error) {
	if err := u.guard(); err != nil {
		return lending.Loan{}, err
	}

	return u.engine.getLoan(ctx, u.tx, loanID)
}

func (u *unitOfWork) CountActiveLoans(ctx context.Context, patronID uuid.UUID) (int, error) {
	if err := u.guard(); err != nil {
		return 0, err
	}

	return u.engine.countActiveLoans(ctx, u.tx, patronID)
}

func (u *unitOfWork) InsertCatalogItem(ctx context.Context, item lending.CatalogItem) error {
	if err := u.guard(); err != nil {
		return err
	}

	return u.engine.insertCatalogItem(ctx, u.tx, item)
}

func (u *unitOfWork) UpdateCatalogItem(ctx context.Context, item lending.CatalogItem) error {
	if err := u.guard(); err != nil {
		return err
	}

	return u.engine.updateCatalogItem(ctx, u.tx, item)
}

func (u *unitOfWork) InsertPatron(ctx context.Context, patron lending.Patron) error {
	if err := u.guard(); err != nil {
		return err
	}

	return u.engine.insertPatron(ctx, u.tx, patron)
}

func (u *unitOfWork) UpdatePatron(ctx context.Context, patron lending.Patron) error {
	if err := u.guard(); err != nil {
		return err
	}

	return u.engine.updatePatron(ctx, u.tx, patron)
}

func (u *unitOfWork) InsertLoan(ctx context.Context, loan lending.Loan) error {
	if err := u.guard(); err != nil {
		return err
	}

	return u.engine.insertLoan(ctx, u.tx, loan)
}

func (u *unitOfWork) UpdateLoan(ctx context.Context, loan lending.Loan) error {
	if err := u.guard(); err != nil {
		return err
	}

	return u.engine.updateLoan(ctx, u.tx, loan)
}

func (u *unitOfWork) AppendChange(ctx context.Context, record changelog.Record) error {
	if err := u.guard(); err != nil {
		return err
	}

	return u.engine.appendChange(ctx, u.tx, record)
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if err := u.guard(); err != nil {
		return err
	}
	u.closed = true

	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.closed {
		return nil
	}
	u.closed = true

	return u.tx.Rollback(ctx)
}

var _ storage.UnitOfWork = (*unitOfWork)(nil)
