// Package postgresengine provides the PostgreSQL implementation of the
// lending storage contracts.
//
// The engine supports three database libraries through internal adapters:
// pgx.Pool, sql.DB and sqlx.DB. Pick the constructor matching your connection
// type; behavior is identical across all three.
//
// Concurrency control is optimistic: every UPDATE carries the version the row
// was read with, and a zero rows-affected result surfaces as
// storage.ErrConcurrencyConflict. The lending engine retries the whole unit of
// work in that case, so no pessimistic locks are held across the
// validate-then-mutate sequence.
package postgresengine
