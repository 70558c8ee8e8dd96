// Package helper provides test doubles for the observability interfaces of
// the lending engine: a slog.Handler spy for log assertions and a metrics
// collector spy for metric assertions.
package helper
