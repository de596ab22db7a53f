// Declarative cascade rules for entity deletion. Each relationship names
// the child table, the foreign-key column pointing at the parent, and
// whether the children tombstone or hard-delete. Collection deletion walks
// this table inside one transaction, which is what makes "no orphaned
// cards" provable from the rules alone.
package sqlite

import (
	"database/sql"
	"fmt"
)

type cascadeMode int

const (
	cascadeSoft cascadeMode = iota // set deleted = 1, deleted_at
	cascadeHard                    // DELETE the rows
)

type cascadeRule struct {
	child string      // child table name
	fk    string      // foreign-key column referencing the parent
	mode  cascadeMode // soft or hard
}

// categoryCascades: deleting a collection soft-deletes its webpages and
// hard-deletes its subcategories.
var categoryCascades = []cascadeRule{
	{child: "webpages", fk: "category_id", mode: cascadeSoft},
	{child: "subcategories", fk: "category_id", mode: cascadeHard},
}

// applyCascades runs every rule against the children of parentID.
// nowStr stamps soft-deleted rows.
func applyCascades(tx *sql.Tx, rules []cascadeRule, parentID, nowStr string) error {
	for _, r := range rules {
		var err error
		switch r.mode {
		case cascadeSoft:
			_, err = tx.Exec(
				fmt.Sprintf("UPDATE %s SET deleted = 1, deleted_at = ? WHERE %s = ? AND deleted = 0", r.child, r.fk),
				nowStr, parentID,
			)
		case cascadeHard:
			_, err = tx.Exec(
				fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.child, r.fk),
				parentID,
			)
		}
		if err != nil {
			return fmt.Errorf("cascading %s delete to %s: %w", modeName(r.mode), r.child, err)
		}
	}
	return nil
}

func modeName(m cascadeMode) string {
	if m == cascadeSoft {
		return "soft"
	}
	return "hard"
}
