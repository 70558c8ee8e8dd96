package lending

import (
	"fmt"

	"github.com/google/uuid"
)

// CatalogItem is a book title with copy-count inventory.
//
// While its properties are exported for storage mapping, it should only be
// constructed with NewCatalogItem and mutated through its methods: BorrowCopy
// and ReturnCopy are the only legal way to change AvailableCopies.
type CatalogItem struct {
	ID              uuid.UUID
	Code            string // unique, ISBN-like business key
	Title           string
	TotalCopies     int
	AvailableCopies int
	Retired         bool
	Version         uint // optimistic lock, managed by the storage layer
}

// NewCatalogItem creates a catalog item with all copies available.
func NewCatalogItem(id uuid.UUID, code string, title string, totalCopies int) (CatalogItem, error) {
	if code == "" {
		return CatalogItem{}, ErrEmptyCatalogCode
	}

	if totalCopies < 0 {
		return CatalogItem{}, fmt.Errorf("%w: %d", ErrNegativeTotalCopies, totalCopies)
	}

	return CatalogItem{
		ID:              id,
		Code:            code,
		Title:           title,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}, nil
}

// BorrowCopy takes one copy out of the available pool.
// It fails with ErrNotAvailable when no copies are free.
func (i *CatalogItem) BorrowCopy() error {
	if i.AvailableCopies == 0 {
		return fmt.Errorf("%w: item %s (%s)", ErrNotAvailable, i.ID, i.Code)
	}

	i.AvailableCopies--

	return nil
}

// ReturnCopy puts one copy back into the available pool.
// It fails with ErrInventoryOverflow when all copies are already in - that
// should never happen if the engine is correct.
func (i *CatalogItem) ReturnCopy() error {
	if i.AvailableCopies == i.TotalCopies {
		return fmt.Errorf("%w: item %s has %d of %d copies available",
			ErrInventoryOverflow, i.ID, i.AvailableCopies, i.TotalCopies)
	}

	i.AvailableCopies++

	return nil
}

// Retire soft-deletes the item. Retired items cannot be borrowed but keep
// their loan history; they are never deleted physically.
func (i *CatalogItem) Retire() {
	i.Retired = true
}

// AdjustTotalCopies changes the inventory size, keeping the invariant
// 0 <= AvailableCopies <= TotalCopies by shifting the available count with the
// same delta. Shrinking below the number of copies currently out is rejected.
func (i *CatalogItem) AdjustTotalCopies(newTotal int) error {
	if newTotal < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTotalCopies, newTotal)
	}

	copiesOut := i.TotalCopies - i.AvailableCopies
	if newTotal < copiesOut {
		return fmt.Errorf("%w: %d copies of item %s are out, cannot shrink to %d",
			ErrNotAvailable, copiesOut, i.ID, newTotal)
	}

	i.AvailableCopies = newTotal - copiesOut
	i.TotalCopies = newTotal

	return nil
}
