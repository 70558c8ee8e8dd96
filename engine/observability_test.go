package engine_test

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/engine"
	"github.com/openshelf/lending-engine-go/oteladapters"
	"github.com/openshelf/lending-engine-go/storage"
	"github.com/openshelf/lending-engine-go/storage/memoryengine"
	"github.com/openshelf/lending-engine-go/testutil/helper"
)

func Test_Engine_WithLogger_LogsCompletedOperations(t *testing.T) {
	// arrange
	f := newEngineFixture(t)
	logSpy := helper.NewLogHandlerSpy(false)

	eng, err := engine.NewEngine(f.store,
		engine.WithClock(f.clock),
		engine.WithLogger(slog.New(logSpy)))
	require.NoError(t, err)
	f.engine = eng

	// act
	f.givenItem(t, 1)

	// assert
	assert.True(t, logSpy.HasInfoLogWithDurationMS("lending engine operation completed"))
}

func Test_Engine_WithContextualLogger_LogsFailedOperations(t *testing.T) {
	// arrange
	f := newEngineFixture(t)
	logSpy := helper.NewLogHandlerSpy(false)

	eng, err := engine.NewEngine(f.store,
		engine.WithClock(f.clock),
		engine.WithContextualLogger(oteladapters.NewSlogBridgeLoggerWithHandler(logSpy)))
	require.NoError(t, err)
	f.engine = eng

	// act
	_, opErr := f.engine.CreateLoan(f.ctx, uuid.New(), uuid.New())

	// assert
	require.Error(t, opErr)
	assert.True(t, logSpy.HasLog(slog.LevelError, "lending engine operation failed"))
}

func Test_Engine_WithMetrics_RecordsDurationAndErrors(t *testing.T) {
	// arrange
	f := newEngineFixture(t)
	metricsSpy := helper.NewMetricsCollectorSpy(true)

	eng, err := engine.NewEngine(f.store,
		engine.WithClock(f.clock),
		engine.WithMetrics(metricsSpy))
	require.NoError(t, err)
	f.engine = eng

	// act: one success and one failure
	item := f.givenItem(t, 1)
	_, opErr := f.engine.CreateLoan(f.ctx, uuid.New(), item.ID)

	// assert
	require.Error(t, opErr)

	durations := metricsSpy.GetDurationRecords()
	require.NotEmpty(t, durations)
	assert.Equal(t, engine.OperationDurationMetric, durations[0].Metric)
	assert.Equal(t, "add_catalog_item", durations[0].Labels["operation"])

	assert.True(t, metricsSpy.HasCounterRecord(engine.OperationErrorsMetric, map[string]string{
		"operation":  "create_loan",
		"error_type": "patron_not_found",
	}))
}

func Test_Engine_WithMetrics_CountsRetriesAfterConcurrencyConflicts(t *testing.T) {
	// arrange
	f := newEngineFixture(t)
	metricsSpy := helper.NewMetricsCollectorSpy(true)

	eng, err := engine.NewEngine(f.store,
		engine.WithClock(f.clock),
		engine.WithMetrics(metricsSpy))
	require.NoError(t, err)
	f.engine = eng

	f.store.FailOnce(memoryengine.FailpointCommit, storage.ErrConcurrencyConflict)

	// act: the first attempt loses the race, the second one succeeds
	item := f.givenItem(t, 1)

	// assert
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.True(t, metricsSpy.HasCounterRecord(engine.RetriesMetric, map[string]string{
		"operation": "add_catalog_item",
	}))
}
