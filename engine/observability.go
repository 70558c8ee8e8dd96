package engine

import (
	"context"
	"errors"
	"time"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

// Logger interface for operational logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace
// correlation. It follows the same dependency-free pattern as
// MetricsCollector, allowing integration with any logging backend that
// supports context-based correlation.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting engine performance and
// operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// Metric and label names emitted by the engine.
const (
	OperationDurationMetric = "lending_engine_operation_duration_seconds"
	OperationErrorsMetric   = "lending_engine_operation_errors_total"
	RetriesMetric           = "lending_engine_operation_retries_total"

	labelOperation = "operation"
	labelErrorType = "error_type"
)

const (
	logMsgOperationCompleted = "lending engine operation completed"
	logMsgOperationFailed    = "lending engine operation failed"
	logAttrOperation         = "operation"
	logAttrError             = "error"
	logAttrDurationMS        = "duration_ms"
)

// logCompleted logs a successful operation if a logger is configured.
func (e *Engine) logCompleted(ctx context.Context, operation string, duration time.Duration) {
	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, logMsgOperationCompleted,
			logAttrOperation, operation,
			logAttrDurationMS, durationToMilliseconds(duration))
		return
	}

	if e.logger != nil {
		e.logger.Info(logMsgOperationCompleted,
			logAttrOperation, operation,
			logAttrDurationMS, durationToMilliseconds(duration))
	}
}

// logFailed logs a failed operation if a logger is configured.
func (e *Engine) logFailed(ctx context.Context, operation string, err error) {
	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, logMsgOperationFailed,
			logAttrOperation, operation,
			logAttrError, err.Error())
		return
	}

	if e.logger != nil {
		e.logger.Error(logMsgOperationFailed,
			logAttrOperation, operation,
			logAttrError, err.Error())
	}
}

func (e *Engine) recordDuration(operation string, duration time.Duration) {
	if e.metricsCollector != nil {
		e.metricsCollector.RecordDuration(OperationDurationMetric, duration,
			map[string]string{labelOperation: operation})
	}
}

func (e *Engine) recordError(operation string, errorType string) {
	if e.metricsCollector != nil {
		e.metricsCollector.IncrementCounter(OperationErrorsMetric,
			map[string]string{labelOperation: operation, labelErrorType: errorType})
	}
}

// recordRetry counts one re-run of an operation after a concurrency conflict.
func (e *Engine) recordRetry(operation string) {
	if e.metricsCollector != nil {
		e.metricsCollector.IncrementCounter(RetriesMetric,
			map[string]string{labelOperation: operation})
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// errorType extracts a stable label for metrics from a business or storage
// error.
func errorType(err error) string {
	switch {
	case errors.Is(err, lending.ErrPatronNotFound):
		return "patron_not_found"
	case errors.Is(err, lending.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, lending.ErrLoanNotFound):
		return "loan_not_found"
	case errors.Is(err, lending.ErrMemberNotActive):
		return "member_not_active"
	case errors.Is(err, lending.ErrMembershipExpired):
		return "membership_expired"
	case errors.Is(err, lending.ErrItemRetired):
		return "item_retired"
	case errors.Is(err, lending.ErrNotAvailable):
		return "not_available"
	case errors.Is(err, lending.ErrBorrowLimitReached):
		return "borrow_limit_reached"
	case errors.Is(err, lending.ErrLoanNotActive):
		return "loan_not_active"
	case errors.Is(err, lending.ErrRenewalLimitExceeded):
		return "renewal_limit_exceeded"
	case errors.Is(err, lending.ErrInventoryOverflow):
		return "inventory_overflow"
	case errors.Is(err, storage.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	default:
		return "storage"
	}
}
