package storage

import "errors"

// ErrConcurrencyConflict is returned when a versioned write lost a race: the
// row changed between the unit of work's read and its commit. The whole unit
// of work had no effect and is safe to retry.
var ErrConcurrencyConflict = errors.New("concurrency conflict, no rows were affected")

// ErrNilDatabaseConnection is returned when a storage engine is constructed
// from a nil connection or pool.
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// ErrEmptyTableName is returned when a storage engine is configured with an
// empty table name.
var ErrEmptyTableName = errors.New("empty table name supplied")

// ErrUnitOfWorkClosed is returned when a unit of work is used after Commit or
// Rollback.
var ErrUnitOfWorkClosed = errors.New("unit of work is already closed")

// ErrDuplicateKey is returned when an insert violates a uniqueness rule, e.g.
// a duplicate catalog code or membership code.
var ErrDuplicateKey = errors.New("duplicate key")
