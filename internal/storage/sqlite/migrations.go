package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL DEFAULT 'quick-split',
    source_file TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    category_confidence TEXT NOT NULL DEFAULT '',
    subtotal REAL NOT NULL,
    tax REAL NOT NULL DEFAULT 0,
    tax_percent REAL NOT NULL DEFAULT 0,
    service_charge REAL NOT NULL DEFAULT 0,
    service_percent REAL NOT NULL DEFAULT 0,
    discount REAL NOT NULL DEFAULT 0,
    rounding REAL NOT NULL DEFAULT 0,
    grand_total REAL NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS receipt_lines (
    id TEXT PRIMARY KEY,
    receipt_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    amount REAL NOT NULL,
    qty INTEGER NOT NULL DEFAULT 1,
    is_bundle INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS line_components (
    line_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (line_id, position),
    FOREIGN KEY (line_id) REFERENCES receipt_lines(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS people (
    id TEXT NOT NULL,
    receipt_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (receipt_id, id),
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS claims (
    receipt_id TEXT NOT NULL,
    person_id TEXT NOT NULL,
    line_id TEXT NOT NULL,
    PRIMARY KEY (receipt_id, person_id, line_id),
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payment_status (
    receipt_id TEXT NOT NULL,
    person_id TEXT NOT NULL,
    status TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (receipt_id, person_id),
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_receipt_lines_receipt_id ON receipt_lines(receipt_id);
CREATE INDEX IF NOT EXISTS idx_people_receipt_id ON people(receipt_id);
CREATE INDEX IF NOT EXISTS idx_claims_receipt_id ON claims(receipt_id);
CREATE INDEX IF NOT EXISTS idx_receipts_group_id ON receipts(group_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
