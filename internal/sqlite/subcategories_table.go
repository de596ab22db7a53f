// Subcategories (groups) table accessor. Groups hard-delete; the
// last-group invariant is an application-level precondition, not enforced
// here, so direct table calls can always remove a row.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/linktrove/linktrove/pkg/types"
)

var _ types.GroupTable = (*subcategoriesTable)(nil)

type subcategoriesTable struct {
	backend *Backend
}

// Create persists a new group with ordinal one past the current maximum
// among its siblings.
func (st *subcategoriesTable) Create(collectionID, name string) (*types.Group, error) {
	st.backend.mu.Lock()
	defer st.backend.mu.Unlock()
	if err := st.backend.ready(); err != nil {
		return nil, err
	}
	if collectionID == "" {
		return nil, types.ErrInvalidID
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = types.DefaultGroupName
	}

	now := time.Now().UTC()
	grp := &types.Group{
		ID:           newUUID(),
		CollectionID: collectionID,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := st.backend.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(
			"SELECT 1 FROM categories WHERE category_id = ? AND deleted = 0", collectionID,
		).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return types.ErrNotFound
			}
			return err
		}

		var maxOrd sql.NullInt64
		if err := tx.QueryRow(
			"SELECT MAX(ordinal) FROM subcategories WHERE category_id = ?", collectionID,
		).Scan(&maxOrd); err != nil {
			return err
		}
		if maxOrd.Valid {
			grp.Order = int(maxOrd.Int64) + 1
		}

		_, err := tx.Exec(
			"INSERT INTO subcategories (subcategory_id, category_id, name, ordinal, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			grp.ID, grp.CollectionID, grp.Name, grp.Order,
			now.Format(time.RFC3339), now.Format(time.RFC3339),
		)
		return err
	})
	if err != nil {
		if err == types.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("creating group: %w", err)
	}
	return grp, nil
}

// Get retrieves a group by ID.
func (st *subcategoriesTable) Get(id string) (*types.Group, error) {
	st.backend.mu.RLock()
	defer st.backend.mu.RUnlock()
	if err := st.backend.ready(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return st.getLocked(id)
}

// Rename trims and updates the group name. An empty trimmed name falls back
// to the default name instead of erroring, keeping the last-group invariant
// meaningful for display.
func (st *subcategoriesTable) Rename(id, name string) (*types.Group, error) {
	st.backend.mu.Lock()
	defer st.backend.mu.Unlock()
	if err := st.backend.ready(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = types.DefaultGroupName
	}

	nowStr := time.Now().UTC().Format(time.RFC3339)
	err := st.backend.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"UPDATE subcategories SET name = ?, updated_at = ? WHERE subcategory_id = ?",
			name, nowStr, id,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st.getLocked(id)
}

// List returns the groups of a collection by ordinal.
func (st *subcategoriesTable) List(collectionID string) ([]*types.Group, error) {
	st.backend.mu.RLock()
	defer st.backend.mu.RUnlock()
	if err := st.backend.ready(); err != nil {
		return nil, err
	}

	rows, err := st.backend.db.Query(
		selectGroup+" WHERE category_id = ? ORDER BY ordinal, subcategory_id",
		collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []*types.Group
	for rows.Next() {
		grp, err := hydrateGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, grp)
	}
	return groups, rows.Err()
}

// Count returns the number of groups in a collection.
func (st *subcategoriesTable) Count(collectionID string) (int, error) {
	st.backend.mu.RLock()
	defer st.backend.mu.RUnlock()
	if err := st.backend.ready(); err != nil {
		return 0, err
	}

	var n int
	err := st.backend.db.QueryRow(
		"SELECT COUNT(*) FROM subcategories WHERE category_id = ?", collectionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting groups: %w", err)
	}
	return n, nil
}

// Reorder rewrites ordinals to match position in orderedIDs. Groups of the
// collection absent from the input keep their relative order and are
// appended after the listed ones: a merge, not a destructive replace, so
// stale client state cannot drop groups.
func (st *subcategoriesTable) Reorder(collectionID string, orderedIDs []string) error {
	st.backend.mu.Lock()
	defer st.backend.mu.Unlock()
	if err := st.backend.ready(); err != nil {
		return err
	}
	if collectionID == "" {
		return types.ErrInvalidID
	}

	nowStr := time.Now().UTC().Format(time.RFC3339)
	return st.backend.withTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(
			"SELECT subcategory_id FROM subcategories WHERE category_id = ? ORDER BY ordinal, subcategory_id",
			collectionID,
		)
		if err != nil {
			return err
		}
		var existing []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			existing = append(existing, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		known := make(map[string]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}

		// Listed ids first (ignoring ids not in this collection), then
		// unlisted survivors in their current relative order.
		merged := make([]string, 0, len(existing))
		placed := make(map[string]bool, len(existing))
		for _, id := range orderedIDs {
			if known[id] && !placed[id] {
				merged = append(merged, id)
				placed[id] = true
			}
		}
		for _, id := range existing {
			if !placed[id] {
				merged = append(merged, id)
			}
		}

		for pos, id := range merged {
			if _, err := tx.Exec(
				"UPDATE subcategories SET ordinal = ?, updated_at = ? WHERE subcategory_id = ?",
				pos, nowStr, id,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a group. Member cards are either reassigned to another
// group or hard-deleted, in the same transaction as the group row removal,
// so no orphaned cards survive a partial failure.
func (st *subcategoriesTable) Delete(id string, opts types.GroupDeleteOptions) error {
	st.backend.mu.Lock()
	defer st.backend.mu.Unlock()
	if err := st.backend.ready(); err != nil {
		return err
	}
	if id == "" {
		return types.ErrInvalidID
	}
	if opts.Mode == types.GroupDeleteReassign && opts.ReassignTo == "" {
		return types.ErrInvalidData
	}

	nowStr := time.Now().UTC().Format(time.RFC3339)
	return st.backend.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(
			"SELECT 1 FROM subcategories WHERE subcategory_id = ?", id,
		).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return types.ErrNotFound
			}
			return err
		}

		switch opts.Mode {
		case types.GroupDeleteReassign:
			var target string
			if err := tx.QueryRow(
				"SELECT subcategory_id FROM subcategories WHERE subcategory_id = ?", opts.ReassignTo,
			).Scan(&target); err != nil {
				if err == sql.ErrNoRows {
					return types.ErrNotFound
				}
				return err
			}
			if _, err := tx.Exec(
				"UPDATE webpages SET subcategory_id = ?, updated_at = ? WHERE subcategory_id = ?",
				opts.ReassignTo, nowStr, id,
			); err != nil {
				return err
			}
		case types.GroupDeleteWithPages:
			if _, err := tx.Exec(
				"DELETE FROM webpages WHERE subcategory_id = ?", id,
			); err != nil {
				return err
			}
		}

		_, err := tx.Exec("DELETE FROM subcategories WHERE subcategory_id = ?", id)
		return err
	})
}

func (st *subcategoriesTable) getLocked(id string) (*types.Group, error) {
	row := st.backend.db.QueryRow(selectGroup+" WHERE subcategory_id = ?", id)
	grp, err := hydrateGroup(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting group %s: %w", id, err)
	}
	return grp, nil
}

const selectGroup = "SELECT subcategory_id, category_id, name, ordinal, created_at, updated_at FROM subcategories"

func hydrateGroup(row scanner) (*types.Group, error) {
	var grp types.Group
	var createdAt, updatedAt string
	if err := row.Scan(&grp.ID, &grp.CollectionID, &grp.Name, &grp.Order, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if grp.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if grp.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	return &grp, nil
}
