// Meta (key-value) table accessor. Values are JSON-encoded blobs; this
// table backs order snapshots, the persisted sync status, and misc settings.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linktrove/linktrove/pkg/types"
)

var _ types.MetaTable = (*metaTable)(nil)

type metaTable struct {
	backend *Backend
}

// Get decodes the value stored under key into out.
func (mt *metaTable) Get(key string, out any) error {
	mt.backend.mu.RLock()
	defer mt.backend.mu.RUnlock()
	if err := mt.backend.ready(); err != nil {
		return err
	}
	if key == "" {
		return types.ErrInvalidID
	}

	var value string
	err := mt.backend.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.ErrNotFound
		}
		return fmt.Errorf("getting meta %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("unmarshaling meta %s: %w", key, err)
	}
	return nil
}

// Set stores value under key, replacing any previous value.
func (mt *metaTable) Set(key string, value any) error {
	mt.backend.mu.Lock()
	defer mt.backend.mu.Unlock()
	if err := mt.backend.ready(); err != nil {
		return err
	}
	if key == "" {
		return types.ErrInvalidID
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling meta %s: %w", key, err)
	}
	nowStr := time.Now().UTC().Format(time.RFC3339)
	return mt.backend.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO meta (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
			key, string(encoded), nowStr,
		)
		return err
	})
}

// Delete removes the key. Absent keys are not an error.
func (mt *metaTable) Delete(key string) error {
	mt.backend.mu.Lock()
	defer mt.backend.mu.Unlock()
	if err := mt.backend.ready(); err != nil {
		return err
	}
	if key == "" {
		return types.ErrInvalidID
	}

	return mt.backend.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM meta WHERE key = ?", key)
		return err
	})
}
