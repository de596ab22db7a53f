// Organizations table accessor.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/linktrove/linktrove/pkg/types"
)

var _ types.OrganizationTable = (*organizationsTable)(nil)

type organizationsTable struct {
	backend *Backend
}

// Create persists a new organization with order one past the current maximum.
func (ot *organizationsTable) Create(name string) (*types.Organization, error) {
	ot.backend.mu.Lock()
	defer ot.backend.mu.Unlock()
	if err := ot.backend.ready(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, types.ErrInvalidData
	}

	now := time.Now().UTC()
	org := &types.Organization{
		ID:        newUUID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := ot.backend.withTx(func(tx *sql.Tx) error {
		var maxOrd sql.NullInt64
		if err := tx.QueryRow("SELECT MAX(ordinal) FROM organizations").Scan(&maxOrd); err != nil {
			return err
		}
		if maxOrd.Valid {
			org.Order = int(maxOrd.Int64) + 1
		}
		_, err := tx.Exec(
			"INSERT INTO organizations (organization_id, name, ordinal, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			org.ID, org.Name, org.Order, now.Format(time.RFC3339), now.Format(time.RFC3339),
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}
	return org, nil
}

// Get retrieves an organization by ID.
func (ot *organizationsTable) Get(id string) (*types.Organization, error) {
	ot.backend.mu.RLock()
	defer ot.backend.mu.RUnlock()
	if err := ot.backend.ready(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := ot.backend.db.QueryRow(
		"SELECT organization_id, name, ordinal, created_at, updated_at, deleted, deleted_at FROM organizations WHERE organization_id = ?",
		id,
	)
	org, err := hydrateOrganization(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting organization %s: %w", id, err)
	}
	return org, nil
}

// List returns all non-deleted organizations ordered by ordinal.
func (ot *organizationsTable) List() ([]*types.Organization, error) {
	ot.backend.mu.RLock()
	defer ot.backend.mu.RUnlock()
	if err := ot.backend.ready(); err != nil {
		return nil, err
	}

	rows, err := ot.backend.db.Query(
		"SELECT organization_id, name, ordinal, created_at, updated_at, deleted, deleted_at FROM organizations WHERE deleted = 0 ORDER BY ordinal, organization_id",
	)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*types.Organization
	for rows.Next() {
		org, err := hydrateOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// SoftDelete tombstones an organization. The row is never removed while
// collections reference it.
func (ot *organizationsTable) SoftDelete(id string) error {
	ot.backend.mu.Lock()
	defer ot.backend.mu.Unlock()
	if err := ot.backend.ready(); err != nil {
		return err
	}
	if id == "" {
		return types.ErrInvalidID
	}

	nowStr := time.Now().UTC().Format(time.RFC3339)
	return ot.backend.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"UPDATE organizations SET deleted = 1, deleted_at = ? WHERE organization_id = ? AND deleted = 0",
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
		return nil
	})
}

// scanner abstracts *sql.Row and *sql.Rows for the hydrate helpers.
type scanner interface {
	Scan(dest ...any) error
}

func hydrateOrganization(row scanner) (*types.Organization, error) {
	var org types.Organization
	var createdAt, updatedAt string
	var deleted int
	var deletedAt sql.NullString
	if err := row.Scan(&org.ID, &org.Name, &org.Order, &createdAt, &updatedAt, &deleted, &deletedAt); err != nil {
		return nil, err
	}
	var err error
	if org.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if org.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	org.Deleted = deleted != 0
	if deletedAt.Valid {
		t, err := time.Parse(time.RFC3339, deletedAt.String)
		if err != nil {
			return nil, err
		}
		org.DeletedAt = &t
	}
	return &org, nil
}
