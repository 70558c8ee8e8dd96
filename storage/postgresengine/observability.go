package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/openshelf/lending-engine-go/storage/postgresengine/internal/adapters"
)

// Logger interface for SQL query logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace
// correlation, following the same dependency-free pattern as MetricsCollector.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting storage performance and
// operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// Metric names emitted by the storage engine.
const (
	QueryDurationMetric       = "lending_storage_query_duration_seconds"
	ConcurrencyConflictMetric = "lending_storage_concurrency_conflicts_total"
)

const (
	logMsgSQLExecuted         = "executed sql"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database statement execution failed"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrDurationMS         = "duration_ms"
	logAttrEntityKind         = "entity_kind"
	logAttrEntityID           = "entity_id"
)

// Storage execution errors. Driver details are wrapped, never replaced.
var (
	ErrQueryingFailed            = errors.New("querying the database failed")
	ErrExecutingStatementFailed  = errors.New("executing the database statement failed")
	ErrScanningDBRowFailed       = errors.New("scanning the database row failed")
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
)

func errScanningRowFailed(err error) error {
	return errors.Join(ErrScanningDBRowFailed, err)
}

// executeQuery executes a SQL query with timing and debug logging.
func (e *Engine) executeQuery(ctx context.Context, runner queryRunner, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := runner.Query(ctx, sqlQuery)
	e.logQueryWithDuration(ctx, sqlQuery, time.Since(start))

	if err != nil {
		err = mapStorageError(err)
		e.logError(ctx, logMsgDBQueryFailed, err, sqlQuery)

		return nil, errors.Join(ErrQueryingFailed, err)
	}

	return rows, nil
}

// executeStatement executes a SQL statement and returns the affected row count.
func (e *Engine) executeStatement(ctx context.Context, runner queryRunner, sqlQuery string) (int64, error) {
	start := time.Now()
	result, err := runner.Exec(ctx, sqlQuery)
	e.logQueryWithDuration(ctx, sqlQuery, time.Since(start))

	if err != nil {
		err = mapStorageError(err)
		e.logError(ctx, logMsgDBExecFailed, err, sqlQuery)

		return 0, errors.Join(ErrExecutingStatementFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		e.logError(ctx, logMsgRowsAffectedFailed, err, sqlQuery)

		return 0, errors.Join(ErrGettingRowsAffectedFailed, err)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (e *Engine) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if e.logger != nil {
			e.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level if
// a logger is configured, and records the duration metric. A configured
// contextual logger wins over the plain one.
func (e *Engine) logQueryWithDuration(ctx context.Context, sqlQuery string, duration time.Duration) {
	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, logMsgSQLExecuted,
			logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	} else if e.logger != nil {
		e.logger.Debug(logMsgSQLExecuted, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if e.metricsCollector != nil {
		e.metricsCollector.RecordDuration(QueryDurationMetric, duration, nil)
	}
}

func (e *Engine) logError(ctx context.Context, msg string, err error, sqlQuery string) {
	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, msg, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		return
	}

	if e.logger != nil {
		e.logger.Error(msg, logAttrError, err.Error(), logAttrQuery, sqlQuery)
	}
}

func (e *Engine) logConcurrencyConflict(entityKind string, entityID string) {
	if e.logger != nil {
		e.logger.Info(logMsgConcurrencyConflict, logAttrEntityKind, entityKind, logAttrEntityID, entityID)
	}

	if e.metricsCollector != nil {
		e.metricsCollector.IncrementCounter(ConcurrencyConflictMetric,
			map[string]string{logAttrEntityKind: entityKind})
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
