// Categories (collections) table accessor.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/linktrove/linktrove/pkg/types"
)

var _ types.CollectionTable = (*categoriesTable)(nil)

type categoriesTable struct {
	backend *Backend
}

// Create persists a new collection under the organization with ordinal one
// past the current maximum among its siblings.
func (ct *categoriesTable) Create(organizationID, name, color string) (*types.Collection, error) {
	ct.backend.mu.Lock()
	defer ct.backend.mu.Unlock()
	if err := ct.backend.ready(); err != nil {
		return nil, err
	}
	if organizationID == "" {
		return nil, types.ErrInvalidID
	}
	if name == "" {
		return nil, types.ErrInvalidData
	}
	if color == "" {
		color = types.DefaultCollectionColor
	}

	now := time.Now().UTC()
	col := &types.Collection{
		ID:             newUUID(),
		OrganizationID: organizationID,
		Name:           name,
		Color:          color,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := ct.backend.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(
			"SELECT 1 FROM organizations WHERE organization_id = ? AND deleted = 0", organizationID,
		).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return types.ErrNotFound
			}
			return err
		}

		var maxOrd sql.NullFloat64
		if err := tx.QueryRow(
			"SELECT MAX(ordinal) FROM categories WHERE organization_id = ?", organizationID,
		).Scan(&maxOrd); err != nil {
			return err
		}
		if maxOrd.Valid {
			col.Order = maxOrd.Float64 + 1
		}

		_, err := tx.Exec(
			"INSERT INTO categories (category_id, organization_id, name, color, ordinal, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			col.ID, col.OrganizationID, col.Name, col.Color, col.Order,
			now.Format(time.RFC3339), now.Format(time.RFC3339),
		)
		return err
	})
	if err != nil {
		if err == types.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("creating collection: %w", err)
	}
	return col, nil
}

// Get retrieves a collection by ID, excluding tombstoned rows.
func (ct *categoriesTable) Get(id string) (*types.Collection, error) {
	ct.backend.mu.RLock()
	defer ct.backend.mu.RUnlock()
	if err := ct.backend.ready(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := ct.backend.db.QueryRow(
		selectCollection+" WHERE category_id = ? AND deleted = 0", id,
	)
	col, err := hydrateCollection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting collection %s: %w", id, err)
	}
	return col, nil
}

// Rename updates the collection name and bumps UpdatedAt.
func (ct *categoriesTable) Rename(id, name string) (*types.Collection, error) {
	ct.backend.mu.Lock()
	defer ct.backend.mu.Unlock()
	if err := ct.backend.ready(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	if name == "" {
		return nil, types.ErrInvalidData
	}

	nowStr := time.Now().UTC().Format(time.RFC3339)
	err := ct.backend.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"UPDATE categories SET name = ?, updated_at = ? WHERE category_id = ? AND deleted = 0",
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
	return ct.getLocked(id)
}

// List returns the non-deleted collections of an organization by ordinal.
func (ct *categoriesTable) List(organizationID string) ([]*types.Collection, error) {
	ct.backend.mu.RLock()
	defer ct.backend.mu.RUnlock()
	if err := ct.backend.ready(); err != nil {
		return nil, err
	}

	rows, err := ct.backend.db.Query(
		selectCollection+" WHERE organization_id = ? AND deleted = 0 ORDER BY ordinal, category_id",
		organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var cols []*types.Collection
	for rows.Next() {
		col, err := hydrateCollection(rows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// Count returns the number of non-deleted collections in an organization.
func (ct *categoriesTable) Count(organizationID string) (int, error) {
	ct.backend.mu.RLock()
	defer ct.backend.mu.RUnlock()
	if err := ct.backend.ready(); err != nil {
		return 0, err
	}

	var n int
	err := ct.backend.db.QueryRow(
		"SELECT COUNT(*) FROM categories WHERE organization_id = ? AND deleted = 0",
		organizationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting collections: %w", err)
	}
	return n, nil
}

// SoftDelete tombstones a collection and applies the cascade rules: member
// webpages soft-delete, member subcategories hard-delete, all in one
// transaction. The last-collection guard lives in the application layer.
func (ct *categoriesTable) SoftDelete(id string) error {
	ct.backend.mu.Lock()
	defer ct.backend.mu.Unlock()
	if err := ct.backend.ready(); err != nil {
		return err
	}
	if id == "" {
		return types.ErrInvalidID
	}

	nowStr := time.Now().UTC().Format(time.RFC3339)
	return ct.backend.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"UPDATE categories SET deleted = 1, deleted_at = ? WHERE category_id = ? AND deleted = 0",
			nowStr, id,
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
		return applyCascades(tx, categoryCascades, id, nowStr)
	})
}

// getLocked fetches a collection while the caller already holds b.mu.
func (ct *categoriesTable) getLocked(id string) (*types.Collection, error) {
	row := ct.backend.db.QueryRow(
		selectCollection+" WHERE category_id = ? AND deleted = 0", id,
	)
	col, err := hydrateCollection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return col, nil
}

const selectCollection = "SELECT category_id, organization_id, name, color, ordinal, default_template_id, is_default, created_at, updated_at, deleted, deleted_at FROM categories"

func hydrateCollection(row scanner) (*types.Collection, error) {
	var col types.Collection
	var createdAt, updatedAt string
	var isDefault, deleted int
	var deletedAt sql.NullString
	if err := row.Scan(&col.ID, &col.OrganizationID, &col.Name, &col.Color, &col.Order,
		&col.DefaultTemplateID, &isDefault, &createdAt, &updatedAt, &deleted, &deletedAt); err != nil {
		return nil, err
	}
	var err error
	if col.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if col.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	col.IsDefault = isDefault != 0
	col.Deleted = deleted != 0
	if deletedAt.Valid {
		t, err := time.Parse(time.RFC3339, deletedAt.String)
		if err != nil {
			return nil, err
		}
		col.DeletedAt = &t
	}
	return &col, nil
}
