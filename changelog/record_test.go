package changelog_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
)

var occurredAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func Test_BuildCatalogItemInsert_HasEmptyBeforeSnapshot(t *testing.T) {
	// arrange
	item, err := lending.NewCatalogItem(uuid.New(), "978-0134190440", "The Go Programming Language", 3)
	require.NoError(t, err)

	// act
	record, err := changelog.BuildCatalogItemInsert(item, occurredAt, "intake-desk")

	// assert
	require.NoError(t, err)
	assert.Equal(t, changelog.ActionInsert, record.Action)
	assert.Equal(t, item.ID, record.EntityID)
	assert.Equal(t, occurredAt, record.OccurredAt)
	assert.Equal(t, "intake-desk", record.ActingIdentity)
	assert.JSONEq(t, "{}", string(record.Before))

	after := unmarshalSnapshot(t, record.After)
	assert.Equal(t, item.ID.String(), after["id"])
	assert.Equal(t, float64(3), after["availableCopies"])
}

func Test_BuildCatalogItemUpdate_CarriesBothSnapshots(t *testing.T) {
	// arrange
	before, err := lending.NewCatalogItem(uuid.New(), "978-0134190440", "The Go Programming Language", 3)
	require.NoError(t, err)

	after := before
	require.NoError(t, after.BorrowCopy())

	// act
	record, err := changelog.BuildCatalogItemUpdate(before, after, occurredAt, "lending-engine")

	// assert
	require.NoError(t, err)
	assert.Equal(t, changelog.ActionUpdate, record.Action)
	assert.Equal(t, before.ID, record.EntityID)

	beforeSnapshot := unmarshalSnapshot(t, record.Before)
	afterSnapshot := unmarshalSnapshot(t, record.After)
	assert.Equal(t, float64(3), beforeSnapshot["availableCopies"])
	assert.Equal(t, float64(2), afterSnapshot["availableCopies"])
}

func Test_CatalogItemSnapshot_OmitsTheStorageVersion(t *testing.T) {
	// arrange
	item, err := lending.NewCatalogItem(uuid.New(), "978-0134190440", "The Go Programming Language", 1)
	require.NoError(t, err)
	item.Version = 7

	// act
	payload, err := changelog.CatalogItemSnapshot(item)

	// assert
	require.NoError(t, err)
	snapshot := unmarshalSnapshot(t, payload)
	assert.NotContains(t, snapshot, "version")
	assert.NotContains(t, snapshot, "Version")
}

func Test_NewRecordID_IsMonotonicWithinTheSameInstant(t *testing.T) {
	// act
	first, err := changelog.NewRecordID(occurredAt)
	require.NoError(t, err)
	second, err := changelog.NewRecordID(occurredAt)
	require.NoError(t, err)

	// assert
	assert.Len(t, first, 26)
	assert.Less(t, first, second)
}

func unmarshalSnapshot(t *testing.T, payload []byte) map[string]any {
	t.Helper()

	snapshot := make(map[string]any)
	require.NoError(t, jsoniter.ConfigFastest.Unmarshal(payload, &snapshot))

	return snapshot
}
