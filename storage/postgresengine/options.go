package postgresengine

import "github.com/openshelf/lending-engine-go/storage"

// TableNames holds the names of the four tables the engine works with.
type TableNames struct {
	CatalogItems   string
	Patrons        string
	Loans          string
	CatalogChanges string
}

// DefaultTableNames returns the table names used when none are configured.
func DefaultTableNames() TableNames {
	return TableNames{
		CatalogItems:   "catalog_items",
		Patrons:        "patrons",
		Loans:          "loans",
		CatalogChanges: "catalog_changes",
	}
}

// Option defines a functional option for configuring an Engine.
type Option func(*Engine) error

// WithTableNames sets the table names for the Engine.
func WithTableNames(tables TableNames) Option {
	return func(e *Engine) error {
		if tables.CatalogItems == "" || tables.Patrons == "" || tables.Loans == "" || tables.CatalogChanges == "" {
			return storage.ErrEmptyTableName
		}

		e.tables = tables

		return nil
	}
}

// WithLogger sets the logger for the Engine.
//
// Debug level: SQL queries with execution timing (development use)
// Info level: concurrency conflicts (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Engine. The
// contextual logger receives log messages with context information including
// automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine. The collector
// receives query durations and concurrency conflict counts.
func WithMetrics(collector MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}
