// package repositories provides the persistence layer for client-side
// state: the feed seen-set (a single kv slot holding a JSON blob) and
// the local reaction log.
//
// The seen-set deliberately fails soft everywhere. Corrupt or missing
// data loads as empty, and write failures are swallowed after a debug
// log; losing it only costs ordering quality, never content.
package repositories

import (
	"database/sql"
	"fmt"
)

// getSlot reads the raw value stored at key in kv_store. Returns
// sql.ErrNoRows when the slot is empty.
func getSlot(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// putSlot upserts the value stored at key in kv_store.
func putSlot(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write kv slot %s: %w", key, err)
	}
	return nil
}
