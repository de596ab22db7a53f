// Webpages (cards) table accessor.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/linktrove/linktrove/pkg/types"
)

var _ types.CardTable = (*webpagesTable)(nil)

type webpagesTable struct {
	backend *Backend
}

// Create validates and persists a new card. The URL is normalized to its
// canonical absolute form; the title falls back to the hostname, then to
// "Untitled". No row is created when validation fails.
func (wt *webpagesTable) Create(card *types.Card) (*types.Card, error) {
	wt.backend.mu.Lock()
	defer wt.backend.mu.Unlock()
	if err := wt.backend.ready(); err != nil {
		return nil, err
	}
	if card == nil {
		return nil, types.ErrInvalidData
	}
	if card.CollectionID == "" || card.GroupID == "" {
		return nil, types.ErrInvalidID
	}

	canonical, err := types.NormalizeURL(card.URL)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := &types.Card{
		ID:           newUUID(),
		Title:        types.DeriveTitle(card.Title, canonical),
		URL:          canonical,
		Favicon:      card.Favicon,
		Note:         card.Note,
		CollectionID: card.CollectionID,
		GroupID:      card.GroupID,
		Meta:         card.Meta,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if out.Meta == nil {
		out.Meta = make(map[string]string)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}

	metaJSON, err := json.Marshal(out.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling card meta: %w", err)
	}

	err = wt.backend.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO webpages (webpage_id, title, url, favicon, note, category_id, subcategory_id, meta, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			out.ID, out.Title, out.URL, out.Favicon, out.Note,
			out.CollectionID, out.GroupID, string(metaJSON),
			now.Format(time.RFC3339), now.Format(time.RFC3339),
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating card: %w", err)
	}
	return out, nil
}

// Get retrieves a card by ID, excluding tombstoned rows.
func (wt *webpagesTable) Get(id string) (*types.Card, error) {
	wt.backend.mu.RLock()
	defer wt.backend.mu.RUnlock()
	if err := wt.backend.ready(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return wt.getLocked(id)
}

// Update merges patch fields into the card inside one transaction, so
// concurrent patches never lose each other's fields. The URL is
// re-validated when present and UpdatedAt is always bumped.
func (wt *webpagesTable) Update(id string, patch types.CardPatch) (*types.Card, error) {
	wt.backend.mu.Lock()
	defer wt.backend.mu.Unlock()
	if err := wt.backend.ready(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	var out *types.Card
	err := wt.backend.withTx(func(tx *sql.Tx) error {
		row := tx.QueryRow(selectCard+" WHERE webpage_id = ? AND deleted = 0", id)
		card, err := hydrateCard(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return types.ErrNotFound
			}
			return err
		}

		if patch.Title != nil {
			card.Title = strings.TrimSpace(*patch.Title)
			if card.Title == "" {
				card.Title = types.DeriveTitle("", card.URL)
			}
		}
		if patch.URL != nil {
			canonical, err := types.NormalizeURL(*patch.URL)
			if err != nil {
				return err
			}
			card.URL = canonical
		}
		if patch.Favicon != nil {
			card.Favicon = *patch.Favicon
		}
		if patch.Note != nil {
			card.Note = *patch.Note
		}
		if patch.GroupID != nil {
			grpRow := tx.QueryRow(
				"SELECT category_id FROM subcategories WHERE subcategory_id = ?", *patch.GroupID,
			)
			var catID string
			if err := grpRow.Scan(&catID); err != nil {
				if err == sql.ErrNoRows {
					return types.ErrNotFound
				}
				return err
			}
			card.GroupID = *patch.GroupID
			card.CollectionID = catID
		}
		if patch.Meta != nil {
			card.Meta = patch.Meta
		}
		card.UpdatedAt = time.Now().UTC()

		if err := card.Validate(); err != nil {
			return err
		}

		metaJSON, err := json.Marshal(card.Meta)
		if err != nil {
			return fmt.Errorf("marshaling card meta: %w", err)
		}
		_, err = tx.Exec(
			"UPDATE webpages SET title = ?, url = ?, favicon = ?, note = ?, category_id = ?, subcategory_id = ?, meta = ?, updated_at = ? WHERE webpage_id = ?",
			card.Title, card.URL, card.Favicon, card.Note,
			card.CollectionID, card.GroupID, string(metaJSON),
			card.UpdatedAt.Format(time.RFC3339), id,
		)
		if err != nil {
			return err
		}
		out = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete hard-deletes a card.
func (wt *webpagesTable) Delete(id string) error {
	wt.backend.mu.Lock()
	defer wt.backend.mu.Unlock()
	if err := wt.backend.ready(); err != nil {
		return err
	}
	if id == "" {
		return types.ErrInvalidID
	}

	return wt.backend.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM webpages WHERE webpage_id = ?", id)
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

// DeleteMany hard-deletes the given cards in one transaction.
// Unknown IDs are skipped rather than erroring.
func (wt *webpagesTable) DeleteMany(ids []string) error {
	wt.backend.mu.Lock()
	defer wt.backend.mu.Unlock()
	if err := wt.backend.ready(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	return wt.backend.withTx(func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.Exec("DELETE FROM webpages WHERE webpage_id = ?", id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByCollection returns the non-deleted cards of a collection in natural
// order: most recently created first, which preserves prepend-on-create
// semantics for cards without an explicit order entry.
func (wt *webpagesTable) ListByCollection(collectionID string) ([]*types.Card, error) {
	return wt.list("category_id", collectionID)
}

// ListByGroup returns the non-deleted cards of a group in natural order.
func (wt *webpagesTable) ListByGroup(groupID string) ([]*types.Card, error) {
	return wt.list("subcategory_id", groupID)
}

func (wt *webpagesTable) list(column, value string) ([]*types.Card, error) {
	wt.backend.mu.RLock()
	defer wt.backend.mu.RUnlock()
	if err := wt.backend.ready(); err != nil {
		return nil, err
	}

	rows, err := wt.backend.db.Query(
		selectCard+" WHERE "+column+" = ? AND deleted = 0 ORDER BY created_at DESC, webpage_id DESC",
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	defer rows.Close()

	var cards []*types.Card
	for rows.Next() {
		card, err := hydrateCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// SoftDeleteByCollection tombstones every live card of a collection.
func (wt *webpagesTable) SoftDeleteByCollection(collectionID string) error {
	wt.backend.mu.Lock()
	defer wt.backend.mu.Unlock()
	if err := wt.backend.ready(); err != nil {
		return err
	}
	if collectionID == "" {
		return types.ErrInvalidID
	}

	nowStr := time.Now().UTC().Format(time.RFC3339)
	return wt.backend.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"UPDATE webpages SET deleted = 1, deleted_at = ? WHERE category_id = ? AND deleted = 0",
			nowStr, collectionID,
		)
		return err
	})
}

func (wt *webpagesTable) getLocked(id string) (*types.Card, error) {
	row := wt.backend.db.QueryRow(selectCard+" WHERE webpage_id = ? AND deleted = 0", id)
	card, err := hydrateCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting card %s: %w", id, err)
	}
	return card, nil
}

const selectCard = "SELECT webpage_id, title, url, favicon, note, category_id, subcategory_id, meta, created_at, updated_at, deleted, deleted_at FROM webpages"

func hydrateCard(row scanner) (*types.Card, error) {
	var card types.Card
	var metaJSON, createdAt, updatedAt string
	var deleted int
	var deletedAt sql.NullString
	if err := row.Scan(&card.ID, &card.Title, &card.URL, &card.Favicon, &card.Note,
		&card.CollectionID, &card.GroupID, &metaJSON, &createdAt, &updatedAt, &deleted, &deletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metaJSON), &card.Meta); err != nil {
		return nil, fmt.Errorf("unmarshaling card meta: %w", err)
	}
	var err error
	if card.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if card.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	card.Deleted = deleted != 0
	if deletedAt.Valid {
		t, err := time.Parse(time.RFC3339, deletedAt.String)
		if err != nil {
			return nil, err
		}
		card.DeletedAt = &t
	}
	return &card, nil
}
