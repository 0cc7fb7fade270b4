// Package txdb persists reduced transaction messages in sqlite so repeated
// CLI runs keep a local history and pagination re-fetches don't lose rows.
package txdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"github.com/likecoin/walletdata/reduce"
)

// Open opens the history database at path, creating the file and its parent
// directory as needed. Pass :memory: for an in-memory database. History
// writes are serialized through SaveMessages, so the pool is capped at one
// connection; WAL mode keeps concurrent CLI reads from blocking on a write.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	var journalMode string
	if err := db.QueryRowContext(ctx, `PRAGMA journal_mode = WAL`).Scan(&journalMode); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode on %s: %w", path, err)
	}
	var busyTimeout int
	if err := db.QueryRowContext(ctx, `PRAGMA busy_timeout = 5000`).Scan(&busyTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout on %s: %w", path, err)
	}
	return db, nil
}

// History tracks normalized messages for one network.
type History struct {
	db        *sql.DB
	networkID string
	single    singleflight.Group
}

// NewHistory creates a History writing under the given network id.
func NewHistory(db *sql.DB, networkID string) *History {
	return &History{db: db, networkID: networkID}
}

// SaveMessages stores a batch of reduced messages. This method is idempotent
// and safe to call multiple times with the same batch; rows are keyed by
// message key and network.
func (h *History) SaveMessages(ctx context.Context, msgs []reduce.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	k := batchKey(msgs)
	_, err, _ := h.single.Do(k, func() (interface{}, error) {
		return nil, h.saveMessages(ctx, msgs)
	})
	return err
}

func (h *History) saveMessages(ctx context.Context, msgs []reduce.Message) error {
	dbTx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = dbTx.Rollback() }()

	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal message %s: %w", msg.Key, err)
		}
		_, err = dbTx.ExecContext(ctx, `INSERT INTO msg(key, hash, network_id, height, type, timestamp, json)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(key, network_id) DO UPDATE SET json=excluded.json`,
			msg.Key, msg.Hash, h.networkID, msg.Height, string(msg.Type), msg.Timestamp, data)
		if err != nil {
			return fmt.Errorf("insert into msg: %w", err)
		}
		// LastInsertId is stale when the upsert took the update branch
		var msgID int64
		err = dbTx.QueryRowContext(ctx, `SELECT id FROM msg WHERE key = ? AND network_id = ?`,
			msg.Key, h.networkID).Scan(&msgID)
		if err != nil {
			return fmt.Errorf("resolve msg id for %s: %w", msg.Key, err)
		}
		for _, address := range msg.InvolvedAddresses {
			_, err = dbTx.ExecContext(ctx, `INSERT OR IGNORE INTO msg_address(fk_msg_id, address) VALUES (?, ?)`,
				msgID, address)
			if err != nil {
				return fmt.Errorf("insert into msg_address: %w", err)
			}
		}
	}
	return dbTx.Commit()
}

// RecentByAddress returns the most recent stored messages involving the
// address, newest first.
func (h *History) RecentByAddress(ctx context.Context, address string, limit int) ([]reduce.Message, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT msg.json
FROM msg
JOIN msg_address ON msg_address.fk_msg_id = msg.id
WHERE msg_address.address = ? AND msg.network_id = ?
ORDER BY msg.timestamp DESC LIMIT ?`, address, h.networkID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []reduce.Message
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("unmarshal stored message: %w", err)
		}
		msgs = append(msgs, msg.Message())
	}
	return msgs, rows.Err()
}

// MessageCount returns the number of stored messages for the network.
func (h *History) MessageCount(ctx context.Context) (int64, error) {
	row := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM msg WHERE network_id = ?`, h.networkID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

func batchKey(msgs []reduce.Message) string {
	keys := make([]string, len(msgs))
	for i, msg := range msgs {
		keys[i] = msg.Key
	}
	return strings.Join(keys, "|")
}
