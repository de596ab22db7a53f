// Whole-dataset export and import for the backup reconciler and the CLI.
// Import is a wholesale replace: last-writer-wins at dataset granularity,
// never a field-level merge.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/linktrove/linktrove/internal/export"
	"github.com/linktrove/linktrove/pkg/types"
)

// ExportDataset reads every live entity and per-group order list into a
// backup document. Tombstoned rows are excluded.
func (b *Backend) ExportDataset() (*export.Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.ready(); err != nil {
		return nil, err
	}

	doc := &export.Document{
		SchemaVersion: export.SchemaVersion,
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		Orders:        make(map[string][]string),
	}

	rows, err := b.db.Query("SELECT organization_id, name, ordinal, created_at, updated_at FROM organizations WHERE deleted = 0 ORDER BY ordinal, organization_id")
	if err != nil {
		return nil, fmt.Errorf("exporting organizations: %w", err)
	}
	for rows.Next() {
		var o export.OrganizationJSON
		if err := rows.Scan(&o.ID, &o.Name, &o.Order, &o.CreatedAt, &o.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		doc.Organizations = append(doc.Organizations, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = b.db.Query("SELECT category_id, organization_id, name, color, ordinal, default_template_id, is_default, created_at, updated_at FROM categories WHERE deleted = 0 ORDER BY ordinal, category_id")
	if err != nil {
		return nil, fmt.Errorf("exporting collections: %w", err)
	}
	for rows.Next() {
		var c export.CollectionJSON
		var isDefault int
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Color, &c.Order, &c.DefaultTemplateID, &isDefault, &c.CreatedAt, &c.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		c.IsDefault = isDefault != 0
		doc.Collections = append(doc.Collections, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = b.db.Query("SELECT subcategory_id, category_id, name, ordinal, created_at, updated_at FROM subcategories ORDER BY ordinal, subcategory_id")
	if err != nil {
		return nil, fmt.Errorf("exporting groups: %w", err)
	}
	for rows.Next() {
		var g export.GroupJSON
		if err := rows.Scan(&g.ID, &g.CollectionID, &g.Name, &g.Order, &g.CreatedAt, &g.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		doc.Groups = append(doc.Groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = b.db.Query("SELECT webpage_id, title, url, favicon, note, category_id, subcategory_id, meta, created_at, updated_at FROM webpages WHERE deleted = 0 ORDER BY created_at DESC, webpage_id DESC")
	if err != nil {
		return nil, fmt.Errorf("exporting cards: %w", err)
	}
	for rows.Next() {
		var c export.CardJSON
		var metaJSON string
		if err := rows.Scan(&c.ID, &c.Title, &c.URL, &c.Favicon, &c.Note, &c.CollectionID, &c.GroupID, &metaJSON, &c.CreatedAt, &c.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		if err := unmarshalMeta(metaJSON, &c.Meta); err != nil {
			rows.Close()
			return nil, err
		}
		doc.Cards = append(doc.Cards, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = b.db.Query("SELECT key, value FROM meta WHERE key LIKE ?", types.MetaKeyGroupOrderPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("exporting orders: %w", err)
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return nil, err
		}
		var ids []string
		if err := unmarshalOrder(value, &ids); err != nil {
			rows.Close()
			return nil, err
		}
		doc.Orders[strings.TrimPrefix(key, types.MetaKeyGroupOrderPrefix)] = ids
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return doc, nil
}

// ImportDataset replaces the entire dataset with the document's contents
// inside one transaction, restoring exact per-group order. On failure the
// previous dataset stays intact.
func (b *Backend) ImportDataset(doc *export.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ready(); err != nil {
		return err
	}
	if doc == nil {
		return types.ErrInvalidData
	}

	return b.withTx(func(tx *sql.Tx) error {
		for _, table := range []string{"webpages", "subcategories", "categories", "organizations"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		if _, err := tx.Exec("DELETE FROM meta WHERE key LIKE ? OR key = ?",
			types.MetaKeyGroupOrderPrefix+"%", types.MetaKeyWebpageOrder); err != nil {
			return fmt.Errorf("clearing order lists: %w", err)
		}
		// Selections reference collection IDs from the replaced dataset.
		if _, err := tx.Exec("DELETE FROM meta WHERE key LIKE ?",
			types.MetaKeySelectedCollectionPrefix+"%"); err != nil {
			return fmt.Errorf("clearing selections: %w", err)
		}

		for _, o := range doc.Organizations {
			if _, err := tx.Exec(
				"INSERT INTO organizations (organization_id, name, ordinal, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
				o.ID, o.Name, o.Order, o.CreatedAt, o.UpdatedAt,
			); err != nil {
				return fmt.Errorf("importing organization %s: %w", o.ID, err)
			}
		}
		for _, c := range doc.Collections {
			if _, err := tx.Exec(
				"INSERT INTO categories (category_id, organization_id, name, color, ordinal, default_template_id, is_default, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
				c.ID, c.OrganizationID, c.Name, c.Color, c.Order, c.DefaultTemplateID, boolToInt(c.IsDefault), c.CreatedAt, c.UpdatedAt,
			); err != nil {
				return fmt.Errorf("importing collection %s: %w", c.ID, err)
			}
		}
		for _, g := range doc.Groups {
			if _, err := tx.Exec(
				"INSERT INTO subcategories (subcategory_id, category_id, name, ordinal, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
				g.ID, g.CollectionID, g.Name, g.Order, g.CreatedAt, g.UpdatedAt,
			); err != nil {
				return fmt.Errorf("importing group %s: %w", g.ID, err)
			}
		}
		for _, c := range doc.Cards {
			metaJSON, err := marshalMeta(c.Meta)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(
				"INSERT INTO webpages (webpage_id, title, url, favicon, note, category_id, subcategory_id, meta, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				c.ID, c.Title, c.URL, c.Favicon, c.Note, c.CollectionID, c.GroupID, metaJSON, c.CreatedAt, c.UpdatedAt,
			); err != nil {
				return fmt.Errorf("importing card %s: %w", c.ID, err)
			}
		}

		nowStr := time.Now().UTC().Format(time.RFC3339)
		for groupID, ids := range doc.Orders {
			encoded, err := marshalOrder(ids)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(
				"INSERT INTO meta (key, value, updated_at) VALUES (?, ?, ?)",
				types.MetaKeyGroupOrderPrefix+groupID, encoded, nowStr,
			); err != nil {
				return fmt.Errorf("importing order for group %s: %w", groupID, err)
			}
		}
		return nil
	})
}

func marshalMeta(m map[string]string) (string, error) {
	if m == nil {
		m = map[string]string{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling card meta: %w", err)
	}
	return string(data), nil
}

func unmarshalMeta(s string, out *map[string]string) error {
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("unmarshaling card meta: %w", err)
	}
	return nil
}

func marshalOrder(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("marshaling order list: %w", err)
	}
	return string(data), nil
}

func unmarshalOrder(s string, out *[]string) error {
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("unmarshaling order list: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
