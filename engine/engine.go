// Package engine implements the Lending Engine: every state transition that
// touches more than one entity (borrow, renew, return, mark lost or damaged,
// cancel) plus catalog and patron maintenance. Each operation runs as one
// atomic unit of work against a storage.Storage backend; lost
// optimistic-locking races are retried with exponential backoff.
package engine

import (
	"context"
	"time"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

const defaultActingIdentity = "lending-engine"

// Engine is the sole writer of loan state. It reads and writes catalog item
// and patron state only through the entity invariant guards, and it emits a
// change record for every catalog item mutation within the same unit of work.
type Engine struct {
	storage          storage.Storage
	clock            lending.Clock
	actingIdentity   string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	retryOptions     []RetryOption
}

// Option defines a functional option for configuring an Engine.
type Option func(*Engine) error

// WithClock sets the clock used for borrow, due, and return timestamps.
func WithClock(clock lending.Clock) Option {
	return func(e *Engine) error {
		e.clock = clock
		return nil
	}
}

// WithActingIdentity sets the identity recorded on change records emitted by
// this engine instance.
func WithActingIdentity(identity string) Option {
	return func(e *Engine) error {
		e.actingIdentity = identity
		return nil
	}
}

// WithLogger sets the logger for the engine.
func WithLogger(logger Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the engine. When both a
// Logger and a ContextualLogger are configured, the contextual one wins.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the engine.
func WithMetrics(collector MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithRetryOptions sets a custom retry configuration for concurrency-conflict
// retries.
func WithRetryOptions(opts ...RetryOption) Option {
	return func(e *Engine) error {
		e.retryOptions = opts
		return nil
	}
}

// NewEngine creates a lending engine on top of the given storage backend with
// optional configuration.
func NewEngine(store storage.Storage, options ...Option) (*Engine, error) {
	engine := &Engine{
		storage:        store,
		clock:          lending.SystemClock{},
		actingIdentity: defaultActingIdentity,
	}

	for _, option := range options {
		if err := option(engine); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

// execute runs fn as one atomic unit of work with retry on concurrency
// conflicts. The unit of work is rolled back on any error; a retried attempt
// starts from a fresh unit of work and therefore observes fresh state.
func (e *Engine) execute(ctx context.Context, operation string, fn func(ctx context.Context, uow storage.UnitOfWork) error) error {
	start := time.Now()
	attempt := 0

	err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		attempt++
		if attempt > 1 {
			e.recordRetry(operation)
		}

		uow, beginErr := e.storage.Begin(retryCtx)
		if beginErr != nil {
			return beginErr
		}
		defer func() { _ = uow.Rollback(retryCtx) }()

		if fnErr := fn(retryCtx, uow); fnErr != nil {
			return fnErr
		}

		return uow.Commit(retryCtx)
	}, e.retryOptions...)

	duration := time.Since(start)
	e.recordDuration(operation, duration)

	if err != nil {
		e.recordError(operation, errorType(err))
		e.logFailed(ctx, operation, err)

		return err
	}

	e.logCompleted(ctx, operation, duration)

	return nil
}
