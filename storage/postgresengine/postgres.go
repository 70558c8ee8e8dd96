package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
	"github.com/openshelf/lending-engine-go/storage/postgresengine/internal/adapters"
)

// Engine is the PostgreSQL storage backend for the lending engine. It
// leverages a database adapter and supports customizable logging, metrics and
// table configuration.
//
// All versioned writes are compare-and-set: UPDATE statements carry a
// `version = <read version>` guard and report storage.ErrConcurrencyConflict
// when no row was affected, so a whole unit of work either commits on the
// state it read or has no effect at all.
type Engine struct {
	db               adapters.DBAdapter
	tables           TableNames
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
}

// NewEngineFromPGXPool creates a new Engine using a pgx pool with optional configuration.
func NewEngineFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Engine, error) {
	if pool == nil {
		return nil, storage.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(pool), options...)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional configuration.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, storage.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options...)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, storage.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options...)
}

func newEngine(db adapters.DBAdapter, options ...Option) (*Engine, error) {
	engine := &Engine{
		db:     db,
		tables: DefaultTableNames(),
	}

	for _, option := range options {
		if err := option(engine); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

// Begin opens a new atomic unit of work backed by a database transaction.
func (e *Engine) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &unitOfWork{engine: e, tx: tx}, nil
}

// GetCatalogItem returns the committed catalog item.
func (e *Engine) GetCatalogItem(ctx context.Context, itemID uuid.UUID) (lending.CatalogItem, error) {
	return e.getCatalogItem(ctx, e.db, colID, itemID.String())
}

// GetCatalogItemByCode returns the committed catalog item with the given code.
func (e *Engine) GetCatalogItemByCode(ctx context.Context, code string) (lending.CatalogItem, error) {
	return e.getCatalogItem(ctx, e.db, colCode, code)
}

// GetPatron returns the committed patron.
func (e *Engine) GetPatron(ctx context.Context, patronID uuid.UUID) (lending.Patron, error) {
	return e.getPatron(ctx, e.db, patronID)
}

// GetLoan returns the committed loan.
func (e *Engine) GetLoan(ctx context.Context, loanID uuid.UUID) (lending.Loan, error) {
	return e.getLoan(ctx, e.db, loanID)
}

// ListOpenLoans returns all committed loans with status Active.
func (e *Engine) ListOpenLoans(ctx context.Context) ([]lending.Loan, error) {
	return e.listLoans(ctx, e.db, loanFilter{status: lending.StatusActive})
}

// ListLoansByPatron returns all committed loans of one patron, historical
// included.
func (e *Engine) ListLoansByPatron(ctx context.Context, patronID uuid.UUID) ([]lending.Loan, error) {
	return e.listLoans(ctx, e.db, loanFilter{patronID: &patronID})
}

// ListChanges returns the change records for one entity, ordered by their
// monotonic record ids.
func (e *Engine) ListChanges(ctx context.Context, entityID uuid.UUID) ([]changelog.Record, error) {
	return e.listChanges(ctx, e.db, entityID)
}

// queryRunner is the subset of adapter behavior shared by the pool and a
// transaction, so read helpers serve both paths.
type queryRunner interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
	Exec(ctx context.Context, query string) (adapters.DBResult, error)
}

// mapStorageError translates driver-level errors into storage errors where a
// stable meaning exists. Unique violations become storage.ErrDuplicateKey; no
// other driver detail crosses the engine boundary.
func mapStorageError(err error) error {
	const uniqueViolation = "23505"

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) && pgxErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, pgxErr.ConstraintName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, pqErr.Constraint)
	}

	return err
}

var _ storage.Storage = (*Engine)(nil)
