package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

const (
	operationAddCatalogItem    = "add_catalog_item"
	operationUpdateCatalogItem = "update_catalog_item"
	operationRetireCatalogItem = "retire_catalog_item"
)

// CatalogItemUpdate describes a catalog maintenance change. Nil fields stay
// untouched.
type CatalogItemUpdate struct {
	Code        *string
	Title       *string
	TotalCopies *int
}

// AddCatalogItem creates a catalog item on intake, with all copies available,
// and emits an insert change record in the same unit of work.
func (e *Engine) AddCatalogItem(ctx context.Context, code string, title string, totalCopies int) (lending.CatalogItem, error) {
	var createdItem lending.CatalogItem

	err := e.execute(ctx, operationAddCatalogItem, func(ctx context.Context, uow storage.UnitOfWork) error {
		now := e.clock.Now()

		item, err := lending.NewCatalogItem(uuid.New(), code, title, totalCopies)
		if err != nil {
			return err
		}

		if err = uow.InsertCatalogItem(ctx, item); err != nil {
			return err
		}

		record, err := changelog.BuildCatalogItemInsert(item, now, e.actingIdentity)
		if err != nil {
			return err
		}

		if err = uow.AppendChange(ctx, record); err != nil {
			return err
		}

		createdItem = item

		return nil
	})
	if err != nil {
		return lending.CatalogItem{}, err
	}

	return createdItem, nil
}

// UpdateCatalogItem applies a maintenance change to a catalog item. The change
// record carries the old and new title/code alongside the inventory counters,
// so direct catalog maintenance is audited exactly like borrow and return.
func (e *Engine) UpdateCatalogItem(ctx context.Context, itemID uuid.UUID, update CatalogItemUpdate) (lending.CatalogItem, error) {
	var updatedItem lending.CatalogItem

	err := e.execute(ctx, operationUpdateCatalogItem, func(ctx context.Context, uow storage.UnitOfWork) error {
		now := e.clock.Now()

		item, err := uow.GetCatalogItem(ctx, itemID)
		if err != nil {
			return err
		}

		itemBefore := item

		if update.Code != nil {
			if *update.Code == "" {
				return lending.ErrEmptyCatalogCode
			}

			item.Code = *update.Code
		}

		if update.Title != nil {
			item.Title = *update.Title
		}

		if update.TotalCopies != nil {
			if err = item.AdjustTotalCopies(*update.TotalCopies); err != nil {
				return err
			}
		}

		if err = uow.UpdateCatalogItem(ctx, item); err != nil {
			return err
		}

		record, err := changelog.BuildCatalogItemUpdate(itemBefore, item, now, e.actingIdentity)
		if err != nil {
			return err
		}

		if err = uow.AppendChange(ctx, record); err != nil {
			return err
		}

		updatedItem = item

		return nil
	})
	if err != nil {
		return lending.CatalogItem{}, err
	}

	return updatedItem, nil
}

// RetireCatalogItem soft-deletes a catalog item. Retired items keep their loan
// history and open loans can still be returned; new loans are rejected.
func (e *Engine) RetireCatalogItem(ctx context.Context, itemID uuid.UUID) (lending.CatalogItem, error) {
	var retiredItem lending.CatalogItem

	err := e.execute(ctx, operationRetireCatalogItem, func(ctx context.Context, uow storage.UnitOfWork) error {
		now := e.clock.Now()

		item, err := uow.GetCatalogItem(ctx, itemID)
		if err != nil {
			return err
		}

		itemBefore := item
		item.Retire()

		if err = uow.UpdateCatalogItem(ctx, item); err != nil {
			return err
		}

		record, err := changelog.BuildCatalogItemUpdate(itemBefore, item, now, e.actingIdentity)
		if err != nil {
			return err
		}

		if err = uow.AppendChange(ctx, record); err != nil {
			return err
		}

		retiredItem = item

		return nil
	})
	if err != nil {
		return lending.CatalogItem{}, err
	}

	return retiredItem, nil
}
