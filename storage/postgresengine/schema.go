package postgresengine

// Schema is the DDL for the default table names, usable by test setups and
// provisioning tools. Uniqueness of catalog codes, membership codes and
// (lowercased) contact addresses is enforced here; everything behavioral is
// enforced by the engine.
const Schema = `
CREATE TABLE IF NOT EXISTS catalog_items (
    id               TEXT PRIMARY KEY,
    code             TEXT NOT NULL UNIQUE,
    title            TEXT NOT NULL DEFAULT '',
    total_copies     INTEGER NOT NULL CHECK (total_copies >= 0),
    available_copies INTEGER NOT NULL CHECK (available_copies >= 0 AND available_copies <= total_copies),
    retired          BOOLEAN NOT NULL DEFAULT FALSE,
    version          BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS patrons (
    id                     TEXT PRIMARY KEY,
    membership_code        TEXT NOT NULL UNIQUE,
    contact_address        TEXT NOT NULL,
    active                 BOOLEAN NOT NULL DEFAULT TRUE,
    enrolled_at            TIMESTAMPTZ NOT NULL,
    membership_expires_at  TIMESTAMPTZ NOT NULL,
    max_items_allowed      INTEGER NOT NULL CHECK (max_items_allowed > 0),
    outstanding_fees_cents BIGINT NOT NULL DEFAULT 0 CHECK (outstanding_fees_cents >= 0),
    version                BIGINT NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS patrons_contact_address_unique
    ON patrons (LOWER(contact_address));

CREATE TABLE IF NOT EXISTS loans (
    id                   TEXT PRIMARY KEY,
    patron_id            TEXT NOT NULL REFERENCES patrons (id),
    item_id              TEXT NOT NULL REFERENCES catalog_items (id),
    borrowed_at          TIMESTAMPTZ NOT NULL,
    due_at               TIMESTAMPTZ NOT NULL,
    returned_at          TIMESTAMPTZ,
    status               TEXT NOT NULL,
    late_fee_cents       BIGINT CHECK (late_fee_cents >= 0),
    fee_paid             BOOLEAN NOT NULL DEFAULT FALSE,
    renewal_count        INTEGER NOT NULL DEFAULT 0 CHECK (renewal_count >= 0),
    max_renewals_allowed INTEGER NOT NULL CHECK (max_renewals_allowed >= 0),
    notes                TEXT NOT NULL DEFAULT '',
    version              BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS loans_patron_status_idx ON loans (patron_id, status);
CREATE INDEX IF NOT EXISTS loans_item_status_idx ON loans (item_id, status);

CREATE TABLE IF NOT EXISTS catalog_changes (
    id              TEXT PRIMARY KEY,
    entity_id       TEXT NOT NULL,
    action          TEXT NOT NULL,
    before_snapshot JSONB NOT NULL,
    after_snapshot  JSONB NOT NULL,
    occurred_at     TIMESTAMPTZ NOT NULL,
    acting_identity TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS catalog_changes_entity_idx ON catalog_changes (entity_id);
`
