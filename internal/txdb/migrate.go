package txdb

import (
	"database/sql"
	"fmt"
	"time"
)

// Migrate migrates db in an idempotent manner. If an error is returned,
// it's acceptable to delete the database and start over. One row in msg is
// one normalized message keyed by its transaction hash and message index;
// msg_address joins messages to their involved addresses for per-account
// history queries. The schema version traces back to the app version that
// produced the schema.
func Migrate(db *sql.DB, version string) error {
	_, err := db.Exec(`PRAGMA foreign_keys = ON`)
	if err != nil {
		return fmt.Errorf("pragma foreign_keys: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS schema_version(
    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL CHECK (length(created_at) > 0),
    version TEXT NOT NULL CHECK (length(version) > 0),
    UNIQUE(version)
)`)
	if err != nil {
		return fmt.Errorf("create table schema_version: %w", err)
	}

	_, err = db.Exec(`INSERT INTO schema_version(created_at, version) VALUES (?, ?)
ON CONFLICT(version) DO UPDATE SET version=version`, nowRFC3339(), version)
	if err != nil {
		return fmt.Errorf("upsert schema_version with version %s: %w", version, err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS msg (
    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
    key TEXT NOT NULL CHECK (length(key) > 0),
    hash TEXT NOT NULL CHECK (length(hash) > 0),
    network_id TEXT NOT NULL CHECK (length(network_id) > 0),
    height TEXT NOT NULL,
    type TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    json TEXT NOT NULL CHECK (length(json) > 0),
    UNIQUE(key, network_id)
)`)
	if err != nil {
		return fmt.Errorf("create table msg: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS msg_address (
    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
    fk_msg_id INTEGER NOT NULL,
    address TEXT NOT NULL CHECK (length(address) > 0),
    FOREIGN KEY(fk_msg_id) REFERENCES msg(id) ON DELETE CASCADE,
    UNIQUE(fk_msg_id, address)
)`)
	if err != nil {
		return fmt.Errorf("create table msg_address: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_msg_address_address ON msg_address(address)`)
	if err != nil {
		return fmt.Errorf("create index idx_msg_address_address: %w", err)
	}

	return nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
