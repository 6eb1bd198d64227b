package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database. These run on
// startup to ensure tables exist. Amounts are stored as TEXT so decimal
// scale survives the round trip.
const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    payer_username TEXT NOT NULL DEFAULT '',
    payee_username TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS obligations (
    id TEXT PRIMARY KEY,
    from_user TEXT NOT NULL,
    to_user TEXT NOT NULL,
    amount TEXT NOT NULL,
    settled INTEGER NOT NULL DEFAULT 0,
    settled_at INTEGER,
    settled_by TEXT,
    transaction_id TEXT,
    from_transaction INTEGER NOT NULL DEFAULT 0,
    recipient_registered INTEGER NOT NULL DEFAULT 1,
    notify_only INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    transaction_id TEXT,
    action TEXT NOT NULL,
    payload TEXT NOT NULL,
    performed_by TEXT NOT NULL DEFAULT '',
    timestamp INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE COLLATE NOCASE,
    phone TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_payer ON transactions(payer_username);
CREATE INDEX IF NOT EXISTS idx_transactions_payee ON transactions(payee_username);
CREATE INDEX IF NOT EXISTS idx_transactions_created_by ON transactions(created_by);
CREATE INDEX IF NOT EXISTS idx_obligations_from_user ON obligations(from_user);
CREATE INDEX IF NOT EXISTS idx_obligations_to_user ON obligations(to_user);
CREATE INDEX IF NOT EXISTS idx_obligations_transaction_id ON obligations(transaction_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
