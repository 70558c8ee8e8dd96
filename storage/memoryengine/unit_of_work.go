package memoryengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

// unitOfWork buffers all writes and applies them under the engine mutex at
// commit time. Updates carry the version the entity was read with; a version
// mismatch at commit aborts the whole unit of work with
// storage.ErrConcurrencyConflict, so no partial mutation ever becomes visible.
type unitOfWork struct {
	engine *Engine
	closed bool

	itemInserts   []lending.CatalogItem
	itemUpdates   []lending.CatalogItem
	patronInserts []lending.Patron
	patronUpdates []lending.Patron
	loanInserts   []lending.Loan
	loanUpdates   []lending.Loan
	changeAppends []changelog.Record
}

func (u *unitOfWork) guard() error {
	if u.closed {
		return storage.ErrUnitOfWorkClosed
	}

	return nil
}

func (u *unitOfWork) GetCatalogItem(ctx context.Context, itemID uuid.UUID) (lending.CatalogItem, error) {
	if err := u.guard(); err != nil {
		return lending.CatalogItem{}, err
	}

	return u.engine.GetCatalogItem(ctx, itemID)
}

func (u *unitOfWork) GetPatron(ctx context.Context, patronID uuid.UUID) (lending.Patron, error) {
	if err := u.guard(); err != nil {
		return lending.Patron{}, err
	}

	return u.engine.GetPatron(ctx, patronID)
}

func (u *unitOfWork) GetLoan(ctx context.Context, loanID uuid.UUID) (lending.Loan, error) {
	if err := u.guard(); err != nil {
		return lending.Loan{}, err
	}

	return u.engine.GetLoan(ctx, loanID)
}

func (u *unitOfWork) CountActiveLoans(_ context.Context, patronID uuid.UUID) (int, error) {
	if err := u.guard(); err != nil {
		return 0, err
	}

	u.engine.mu.Lock()
	defer u.engine.mu.Unlock()

	count := 0
	for _, loan := range u.engine.loans {
		if loan.PatronID == patronID && loan.IsOpen() {
			count++
		}
	}

	return count, nil
}

func (u *unitOfWork) InsertCatalogItem(_ context.Context, item lending.CatalogItem) error {
	if err := u.guard(); err != nil {
		return err
	}

	u.itemInserts = append(u.itemInserts, item)

	return nil
}

func (u *unitOfWork) UpdateCatalogItem(_ context.Context, item lending.CatalogItem) error {
	if err := u.guard(); err != nil {
		return err
	}

	u.itemUpdates = append(u.itemUpdates, item)

	return nil
}

func (u *unitOfWork) InsertPatron(_ context.Context, patron lending.Patron) error {
	if err := u.guard(); err != nil {
		return err
	}

	u.patronInserts = append(u.patronInserts, patron)

	return nil
}

func (u *unitOfWork) UpdatePatron(_ context.Context, patron lending.Patron) error {
	if err := u.guard(); err != nil {
		return err
	}

	u.patronUpdates = append(u.patronUpdates, patron)

	return nil
}

func (u *unitOfWork) InsertLoan(_ context.Context, loan lending.Loan) error {
	if err := u.guard(); err != nil {
		return err
	}

	if err := u.engine.takeFailpoint(FailpointInsertLoan); err != nil {
		return err
	}

	u.loanInserts = append(u.loanInserts, loan)

	return nil
}

func (u *unitOfWork) UpdateLoan(_ context.Context, loan lending.Loan) error {
	if err := u.guard(); err != nil {
		return err
	}

	if err := u.engine.takeFailpoint(FailpointUpdateLoan); err != nil {
		return err
	}

	u.loanUpdates = append(u.loanUpdates, loan)

	return nil
}

func (u *unitOfWork) AppendChange(_ context.Context, record changelog.Record) error {
	if err := u.guard(); err != nil {
		return err
	}

	u.changeAppends = append(u.changeAppends, record)

	return nil
}

// Commit validates all buffered writes against the committed state and, only
// when every check passes, applies them all. Validation strictly precedes
// mutation: a failed check leaves the committed state untouched.
func (u *unitOfWork) Commit(_ context.Context) error {
	if err := u.guard(); err != nil {
		return err
	}
	u.closed = true

	if err := u.engine.takeFailpoint(FailpointCommit); err != nil {
		return err
	}

	u.engine.mu.Lock()
	defer u.engine.mu.Unlock()

	if err := u.validateLocked(); err != nil {
		return err
	}

	u.applyLocked()

	return nil
}

// Rollback discards all buffered writes. It is a no-op after Commit.
func (u *unitOfWork) Rollback(_ context.Context) error {
	u.closed = true

	return nil
}

func (u *unitOfWork) validateLocked() error {
	engine := u.engine

	for _, item := range u.itemInserts {
		if _, exists := engine.items[item.ID]; exists {
			return fmt.Errorf("%w: catalog item %s", storage.ErrDuplicateKey, item.ID)
		}

		for _, existing := range engine.items {
			if existing.Code == item.Code {
				return fmt.Errorf("%w: catalog code %q", storage.ErrDuplicateKey, item.Code)
			}
		}
	}

	for _, item := range u.itemUpdates {
		committed, exists := engine.items[item.ID]
		if !exists {
			return fmt.Errorf("%w: %s", lending.ErrItemNotFound, item.ID)
		}

		if committed.Version != item.Version {
			return fmt.Errorf("%w: catalog item %s", storage.ErrConcurrencyConflict, item.ID)
		}
	}

	for _, patron := range u.patronInserts {
		if _, exists := engine.patrons[patron.ID]; exists {
			return fmt.Errorf("%w: patron %s", storage.ErrDuplicateKey, patron.ID)
		}

		for _, existing := range engine.patrons {
			if existing.MembershipCode == patron.MembershipCode {
				return fmt.Errorf("%w: membership code %q", storage.ErrDuplicateKey, patron.MembershipCode)
			}

			if strings.EqualFold(existing.ContactAddress, patron.ContactAddress) {
				return fmt.Errorf("%w: contact address %q", storage.ErrDuplicateKey, patron.ContactAddress)
			}
		}
	}

	for _, patron := range u.patronUpdates {
		committed, exists := engine.patrons[patron.ID]
		if !exists {
			return fmt.Errorf("%w: %s", lending.ErrPatronNotFound, patron.ID)
		}

		if committed.Version != patron.Version {
			return fmt.Errorf("%w: patron %s", storage.ErrConcurrencyConflict, patron.ID)
		}
	}

	for _, loan := range u.loanInserts {
		if _, exists := engine.loans[loan.ID]; exists {
			return fmt.Errorf("%w: loan %s", storage.ErrDuplicateKey, loan.ID)
		}
	}

	for _, loan := range u.loanUpdates {
		committed, exists := engine.loans[loan.ID]
		if !exists {
			return fmt.Errorf("%w: %s", lending.ErrLoanNotFound, loan.ID)
		}

		if committed.Version != loan.Version {
			return fmt.Errorf("%w: loan %s", storage.ErrConcurrencyConflict, loan.ID)
		}
	}

	return nil
}

func (u *unitOfWork) applyLocked() {
	engine := u.engine

	for _, item := range u.itemInserts {
		engine.items[item.ID] = item
	}

	for _, item := range u.itemUpdates {
		item.Version++
		engine.items[item.ID] = item
	}

	for _, patron := range u.patronInserts {
		engine.patrons[patron.ID] = patron
	}

	for _, patron := range u.patronUpdates {
		patron.Version++
		engine.patrons[patron.ID] = patron
	}

	for _, loan := range u.loanInserts {
		engine.loans[loan.ID] = loan
	}

	for _, loan := range u.loanUpdates {
		loan.Version++
		engine.loans[loan.ID] = loan
	}

	engine.changes = append(engine.changes, u.changeAppends...)
}
