// Package changelog defines the boundary with the Change Log Sink: the record
// delivered for every catalog item mutation, carrying before/after snapshots
// of the mutated entity. Records are written through the same unit of work as
// the mutation they describe, so both persist or neither does.
package changelog

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"

	"github.com/openshelf/lending-engine-go/lending"
)

// Action tells the sink what kind of mutation a record describes.
type Action string

const (
	// ActionInsert marks the creation of an entity.
	ActionInsert Action = "Insert"

	// ActionUpdate marks a change to an existing entity.
	ActionUpdate Action = "Update"
)

// ErrBuildingSnapshotFailed is returned when an entity cannot be serialized
// into a snapshot.
var ErrBuildingSnapshotFailed = errors.New("building change snapshot failed")

// Record is one entry for the Change Log Sink.
//
// The ID is a monotonic ULID so records sort by creation time; snapshots are
// JSON documents of the entity before and after the mutation. Before is empty
// JSON for inserts.
type Record struct {
	ID             string
	EntityID       uuid.UUID
	Action         Action
	Before         []byte
	After          []byte
	OccurredAt     time.Time
	ActingIdentity string
}

// The entropy source must be shared across calls, otherwise ids generated
// within the same millisecond would not be monotonic. ulid.Monotonic is not
// safe for concurrent use, hence the mutex.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRecordID generates a monotonic ULID for a change record.
func NewRecordID(now time.Time) (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(now.UTC()), entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// catalogItemSnapshot is the wire shape of a catalog item snapshot. Version is
// deliberately absent: it belongs to the storage layer, not to the audit trail.
type catalogItemSnapshot struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Title           string `json:"title"`
	TotalCopies     int    `json:"totalCopies"`
	AvailableCopies int    `json:"availableCopies"`
	Retired         bool   `json:"retired"`
}

// CatalogItemSnapshot serializes a catalog item for a change record.
func CatalogItemSnapshot(item lending.CatalogItem) ([]byte, error) {
	snapshot := catalogItemSnapshot{
		ID:              item.ID.String(),
		Code:            item.Code,
		Title:           item.Title,
		TotalCopies:     item.TotalCopies,
		AvailableCopies: item.AvailableCopies,
		Retired:         item.Retired,
	}

	payload, err := jsoniter.ConfigFastest.Marshal(snapshot)
	if err != nil {
		return nil, errors.Join(ErrBuildingSnapshotFailed, err)
	}

	return payload, nil
}

// BuildCatalogItemInsert builds the record for a newly created catalog item.
func BuildCatalogItemInsert(item lending.CatalogItem, occurredAt time.Time, actingIdentity string) (Record, error) {
	after, err := CatalogItemSnapshot(item)
	if err != nil {
		return Record{}, err
	}

	return build(item.ID, ActionInsert, []byte("{}"), after, occurredAt, actingIdentity)
}

// BuildCatalogItemUpdate builds the record for a mutated catalog item, with
// the full before and after snapshots of the row.
func BuildCatalogItemUpdate(before lending.CatalogItem, after lending.CatalogItem, occurredAt time.Time, actingIdentity string) (Record, error) {
	beforeSnapshot, err := CatalogItemSnapshot(before)
	if err != nil {
		return Record{}, err
	}

	afterSnapshot, err := CatalogItemSnapshot(after)
	if err != nil {
		return Record{}, err
	}

	return build(after.ID, ActionUpdate, beforeSnapshot, afterSnapshot, occurredAt, actingIdentity)
}

func build(entityID uuid.UUID, action Action, before []byte, after []byte, occurredAt time.Time, actingIdentity string) (Record, error) {
	id, err := NewRecordID(occurredAt)
	if err != nil {
		return Record{}, fmt.Errorf("generating change record id: %w", err)
	}

	return Record{
		ID:             id,
		EntityID:       entityID,
		Action:         action,
		Before:         before,
		After:          after,
		OccurredAt:     occurredAt,
		ActingIdentity: actingIdentity,
	}, nil
}
