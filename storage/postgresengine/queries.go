package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/changelog"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/storage"
)

const (
	dialectPostgres = "postgres"
	castJsonb       = "?::jsonb"

	colID              = "id"
	colCode            = "code"
	colTitle           = "title"
	colTotalCopies     = "total_copies"
	colAvailableCopies = "available_copies"
	colRetired         = "retired"
	colVersion         = "version"

	colMembershipCode   = "membership_code"
	colContactAddress   = "contact_address"
	colActive           = "active"
	colEnrolledAt       = "enrolled_at"
	colMembershipExpiry = "membership_expires_at"
	colMaxItemsAllowed  = "max_items_allowed"
	colOutstandingFees  = "outstanding_fees_cents"

	colPatronID           = "patron_id"
	colItemID             = "item_id"
	colBorrowedAt         = "borrowed_at"
	colDueAt              = "due_at"
	colReturnedAt         = "returned_at"
	colStatus             = "status"
	colLateFee            = "late_fee_cents"
	colFeePaid            = "fee_paid"
	colRenewalCount       = "renewal_count"
	colMaxRenewalsAllowed = "max_renewals_allowed"
	colNotes              = "notes"

	colEntityID       = "entity_id"
	colAction         = "action"
	colBeforeSnapshot = "before_snapshot"
	colAfterSnapshot  = "after_snapshot"
	colOccurredAt     = "occurred_at"
	colActingIdentity = "acting_identity"
)

var builder = goqu.Dialect(dialectPostgres)

// ErrBuildingQueryFailed is returned when goqu cannot render a statement.
var ErrBuildingQueryFailed = errors.New("building database query failed")

// loanFilter narrows loan list queries.
type loanFilter struct {
	status   lending.LoanStatus
	patronID *uuid.UUID
}

func itemColumns() []any {
	return []any{colID, colCode, colTitle, colTotalCopies, colAvailableCopies, colRetired, colVersion}
}

func patronColumns() []any {
	return []any{
		colID, colMembershipCode, colContactAddress, colActive,
		colEnrolledAt, colMembershipExpiry, colMaxItemsAllowed, colOutstandingFees, colVersion,
	}
}

func loanColumns() []any {
	return []any{
		colID, colPatronID, colItemID, colBorrowedAt, colDueAt, colReturnedAt,
		colStatus, colLateFee, colFeePaid, colRenewalCount, colMaxRenewalsAllowed, colNotes, colVersion,
	}
}

func toSQL(stmt interface{ ToSQL() (string, []any, error) }) (string, error) {
	sqlQuery, _, err := stmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (e *Engine) getCatalogItem(ctx context.Context, runner queryRunner, keyColumn string, key string) (lending.CatalogItem, error) {
	sqlQuery, err := toSQL(builder.
		From(e.tables.CatalogItems).
		Select(itemColumns()...).
		Where(goqu.Ex{keyColumn: key}))
	if err != nil {
		return lending.CatalogItem{}, err
	}

	rows, err := e.executeQuery(ctx, runner, sqlQuery)
	if err != nil {
		return lending.CatalogItem{}, err
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return lending.CatalogItem{}, fmt.Errorf("%w: %s %q", lending.ErrItemNotFound, keyColumn, key)
	}

	return scanCatalogItem(rows)
}

func (e *Engine) getPatron(ctx context.Context, runner queryRunner, patronID uuid.UUID) (lending.Patron, error) {
	sqlQuery, err := toSQL(builder.
		From(e.tables.Patrons).
		Select(patronColumns()...).
		Where(goqu.Ex{colID: patronID.String()}))
	if err != nil {
		return lending.Patron{}, err
	}

	rows, err := e.executeQuery(ctx, runner, sqlQuery)
	if err != nil {
		return lending.Patron{}, err
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return lending.Patron{}, fmt.Errorf("%w: %s", lending.ErrPatronNotFound, patronID)
	}

	return scanPatron(rows)
}

func (e *Engine) getLoan(ctx context.Context, runner queryRunner, loanID uuid.UUID) (lending.Loan, error) {
	sqlQuery, err := toSQL(builder.
		From(e.tables.Loans).
		Select(loanColumns()...).
		Where(goqu.Ex{colID: loanID.String()}))
	if err != nil {
		return lending.Loan{}, err
	}

	rows, err := e.executeQuery(ctx, runner, sqlQuery)
	if err != nil {
		return lending.Loan{}, err
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return lending.Loan{}, fmt.Errorf("%w: %s", lending.ErrLoanNotFound, loanID)
	}

	return scanLoan(rows)
}

func (e *Engine) listLoans(ctx context.Context, runner queryRunner, filter loanFilter) ([]lending.Loan, error) {
	stmt := builder.
		From(e.tables.Loans).
		Select(loanColumns()...).
		Order(goqu.I(colBorrowedAt).Asc())

	if filter.status != 0 {
		stmt = stmt.Where(goqu.Ex{colStatus: filter.status.String()})
	}

	if filter.patronID != nil {
		stmt = stmt.Where(goqu.Ex{colPatronID: filter.patronID.String()})
	}

	sqlQuery, err := toSQL(stmt)
	if err != nil {
		return nil, err
	}

	rows, err := e.executeQuery(ctx, runner, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer e.closeRows(rows)

	loans := make([]lending.Loan, 0)

	for rows.Next() {
		loan, scanErr := scanLoan(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		loans = append(loans, loan)
	}

	return loans, nil
}

func (e *Engine) countActiveLoans(ctx context.Context, runner queryRunner, patronID uuid.UUID) (int, error) {
	sqlQuery, err := toSQL(builder.
		From(e.tables.Loans).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.Ex{
			colPatronID: patronID.String(),
			colStatus:   lending.StatusActive.String(),
		}))
	if err != nil {
		return 0, err
	}

	rows, err := e.executeQuery(ctx, runner, sqlQuery)
	if err != nil {
		return 0, err
	}
	defer e.closeRows(rows)

	count := 0
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			return 0, errScanningRowFailed(scanErr)
		}
	}

	return count, nil
}

func (e *Engine) listChanges(ctx context.Context, runner queryRunner, entityID uuid.UUID) ([]changelog.Record, error) {
	sqlQuery, err := toSQL(builder.
		From(e.tables.CatalogChanges).
		Select(colID, colEntityID, colAction, colBeforeSnapshot, colAfterSnapshot, colOccurredAt, colActingIdentity).
		Where(goqu.Ex{colEntityID: entityID.String()}).
		Order(goqu.I(colID).Asc()))
	if err != nil {
		return nil, err
	}

	rows, err := e.executeQuery(ctx, runner, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer e.closeRows(rows)

	records := make([]changelog.Record, 0)

	for rows.Next() {
		var (
			record   changelog.Record
			entityID string
			action   string
		)

		if scanErr := rows.Scan(
			&record.ID, &entityID, &action,
			&record.Before, &record.After, &record.OccurredAt, &record.ActingIdentity,
		); scanErr != nil {
			return nil, errScanningRowFailed(scanErr)
		}

		parsedEntityID, parseErr := uuid.Parse(entityID)
		if parseErr != nil {
			return nil, errScanningRowFailed(parseErr)
		}

		record.EntityID = parsedEntityID
		record.Action = changelog.Action(action)
		records = append(records, record)
	}

	return records, nil
}

func (e *Engine) insertCatalogItem(ctx context.Context, runner queryRunner, item lending.CatalogItem) error {
	sqlQuery, err := toSQL(builder.
		Insert(e.tables.CatalogItems).
		Rows(goqu.Record{
			colID:              item.ID.String(),
			colCode:            item.Code,
			colTitle:           item.Title,
			colTotalCopies:     item.TotalCopies,
			colAvailableCopies: item.AvailableCopies,
			colRetired:         item.Retired,
			colVersion:         item.Version,
		}))
	if err != nil {
		return err
	}

	_, err = e.executeStatement(ctx, runner, sqlQuery)

	return err
}

func (e *Engine) updateCatalogItem(ctx context.Context, runner queryRunner, item lending.CatalogItem) error {
	sqlQuery, err := toSQL(builder.
		Update(e.tables.CatalogItems).
		Set(goqu.Record{
			colCode:            item.Code,
			colTitle:           item.Title,
			colTotalCopies:     item.TotalCopies,
			colAvailableCopies: item.AvailableCopies,
			colRetired:         item.Retired,
			colVersion:         item.Version + 1,
		}).
		Where(goqu.Ex{
			colID:      item.ID.String(),
			colVersion: item.Version,
		}))
	if err != nil {
		return err
	}

	return e.executeVersionedStatement(ctx, runner, sqlQuery, "catalog item", item.ID.String())
}

func (e *Engine) insertPatron(ctx context.Context, runner queryRunner, patron lending.Patron) error {
	sqlQuery, err := toSQL(builder.
		Insert(e.tables.Patrons).
		Rows(goqu.Record{
			colID:               patron.ID.String(),
			colMembershipCode:   patron.MembershipCode,
			colContactAddress:   patron.ContactAddress,
			colActive:           patron.Active,
			colEnrolledAt:       patron.EnrolledAt,
			colMembershipExpiry: patron.MembershipExpiresAt,
			colMaxItemsAllowed:  patron.MaxItemsAllowed,
			colOutstandingFees:  patron.OutstandingFees.Cents(),
			colVersion:          patron.Version,
		}))
	if err != nil {
		return err
	}

	_, err = e.executeStatement(ctx, runner, sqlQuery)

	return err
}

func (e *Engine) updatePatron(ctx context.Context, runner queryRunner, patron lending.Patron) error {
	sqlQuery, err := toSQL(builder.
		Update(e.tables.Patrons).
		Set(goqu.Record{
			colMembershipCode:   patron.MembershipCode,
			colContactAddress:   patron.ContactAddress,
			colActive:           patron.Active,
			colMembershipExpiry: patron.MembershipExpiresAt,
			colMaxItemsAllowed:  patron.MaxItemsAllowed,
			colOutstandingFees:  patron.OutstandingFees.Cents(),
			colVersion:          patron.Version + 1,
		}).
		Where(goqu.Ex{
			colID:      patron.ID.String(),
			colVersion: patron.Version,
		}))
	if err != nil {
		return err
	}

	return e.executeVersionedStatement(ctx, runner, sqlQuery, "patron", patron.ID.String())
}

func (e *Engine) insertLoan(ctx context.Context, runner queryRunner, loan lending.Loan) error {
	record := goqu.Record{
		colID:                 loan.ID.String(),
		colPatronID:           loan.PatronID.String(),
		colItemID:             loan.ItemID.String(),
		colBorrowedAt:         loan.BorrowedAt,
		colDueAt:              loan.DueAt,
		colReturnedAt:         nil,
		colStatus:             loan.Status.String(),
		colLateFee:            nil,
		colFeePaid:            loan.FeePaid,
		colRenewalCount:       loan.RenewalCount,
		colMaxRenewalsAllowed: loan.MaxRenewalsAllowed,
		colNotes:              loan.Notes,
		colVersion:            loan.Version,
	}

	if loan.ReturnedAt != nil {
		record[colReturnedAt] = *loan.ReturnedAt
	}

	if loan.LateFee != nil {
		record[colLateFee] = loan.LateFee.Cents()
	}

	sqlQuery, err := toSQL(builder.Insert(e.tables.Loans).Rows(record))
	if err != nil {
		return err
	}

	_, err = e.executeStatement(ctx, runner, sqlQuery)

	return err
}

func (e *Engine) updateLoan(ctx context.Context, runner queryRunner, loan lending.Loan) error {
	record := goqu.Record{
		colDueAt:        loan.DueAt,
		colReturnedAt:   nil,
		colStatus:       loan.Status.String(),
		colLateFee:      nil,
		colFeePaid:      loan.FeePaid,
		colRenewalCount: loan.RenewalCount,
		colNotes:        loan.Notes,
		colVersion:      loan.Version + 1,
	}

	if loan.ReturnedAt != nil {
		record[colReturnedAt] = *loan.ReturnedAt
	}

	if loan.LateFee != nil {
		record[colLateFee] = loan.LateFee.Cents()
	}

	sqlQuery, err := toSQL(builder.
		Update(e.tables.Loans).
		Set(record).
		Where(goqu.Ex{
			colID:      loan.ID.String(),
			colVersion: loan.Version,
		}))
	if err != nil {
		return err
	}

	return e.executeVersionedStatement(ctx, runner, sqlQuery, "loan", loan.ID.String())
}

func (e *Engine) appendChange(ctx context.Context, runner queryRunner, record changelog.Record) error {
	sqlQuery, err := toSQL(builder.
		Insert(e.tables.CatalogChanges).
		Rows(goqu.Record{
			colID:             record.ID,
			colEntityID:       record.EntityID.String(),
			colAction:         string(record.Action),
			colBeforeSnapshot: goqu.L(castJsonb, record.Before),
			colAfterSnapshot:  goqu.L(castJsonb, record.After),
			colOccurredAt:     record.OccurredAt,
			colActingIdentity: record.ActingIdentity,
		}))
	if err != nil {
		return err
	}

	_, err = e.executeStatement(ctx, runner, sqlQuery)

	return err
}

// executeVersionedStatement runs a compare-and-set UPDATE and translates "no
// rows affected" into storage.ErrConcurrencyConflict.
func (e *Engine) executeVersionedStatement(ctx context.Context, runner queryRunner, sqlQuery string, entityKind string, entityID string) error {
	rowsAffected, err := e.executeStatement(ctx, runner, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		e.logConcurrencyConflict(entityKind, entityID)

		return fmt.Errorf("%w: %s %s", storage.ErrConcurrencyConflict, entityKind, entityID)
	}

	return nil
}

func scanCatalogItem(rows interface{ Scan(dest ...any) error }) (lending.CatalogItem, error) {
	var (
		item lending.CatalogItem
		id   string
	)

	if err := rows.Scan(
		&id, &item.Code, &item.Title,
		&item.TotalCopies, &item.AvailableCopies, &item.Retired, &item.Version,
	); err != nil {
		return lending.CatalogItem{}, errScanningRowFailed(err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return lending.CatalogItem{}, errScanningRowFailed(err)
	}

	item.ID = parsedID

	return item, nil
}

func scanPatron(rows interface{ Scan(dest ...any) error }) (lending.Patron, error) {
	var (
		patron    lending.Patron
		id        string
		feesCents int64
	)

	if err := rows.Scan(
		&id, &patron.MembershipCode, &patron.ContactAddress, &patron.Active,
		&patron.EnrolledAt, &patron.MembershipExpiresAt, &patron.MaxItemsAllowed,
		&feesCents, &patron.Version,
	); err != nil {
		return lending.Patron{}, errScanningRowFailed(err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return lending.Patron{}, errScanningRowFailed(err)
	}

	patron.ID = parsedID
	patron.OutstandingFees = lending.MoneyFromCents(feesCents)

	return patron, nil
}

func scanLoan(rows interface{ Scan(dest ...any) error }) (lending.Loan, error) {
	var (
		loan         lending.Loan
		id           string
		patronID     string
		itemID       string
		returnedAt   *time.Time
		status       string
		lateFeeCents *int64
	)

	if err := rows.Scan(
		&id, &patronID, &itemID, &loan.BorrowedAt, &loan.DueAt, &returnedAt,
		&status, &lateFeeCents, &loan.FeePaid, &loan.RenewalCount,
		&loan.MaxRenewalsAllowed, &loan.Notes, &loan.Version,
	); err != nil {
		return lending.Loan{}, errScanningRowFailed(err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return lending.Loan{}, errScanningRowFailed(err)
	}

	parsedPatronID, err := uuid.Parse(patronID)
	if err != nil {
		return lending.Loan{}, errScanningRowFailed(err)
	}

	parsedItemID, err := uuid.Parse(itemID)
	if err != nil {
		return lending.Loan{}, errScanningRowFailed(err)
	}

	parsedStatus, err := lending.ParseLoanStatus(status)
	if err != nil {
		return lending.Loan{}, errScanningRowFailed(err)
	}

	loan.ID = parsedID
	loan.PatronID = parsedPatronID
	loan.ItemID = parsedItemID
	loan.ReturnedAt = returnedAt
	loan.Status = parsedStatus

	if lateFeeCents != nil {
		fee := lending.MoneyFromCents(*lateFeeCents)
		loan.LateFee = &fee
	}

	return loan, nil
}
