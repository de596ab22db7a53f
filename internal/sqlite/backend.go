// SQLite backend lifecycle: attach, schema creation, seeding, detach, and
// the transaction wrapper every mutating operation goes through.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/linktrove/linktrove/internal/logger"
	"github.com/linktrove/linktrove/pkg/types"
)

// DBFileName is the SQLite database file created inside the data directory.
const DBFileName = "linktrove.db"

// Backend implements types.Store over a single SQLite file. The RWMutex is
// the only mutual-exclusion mechanism: every mutating table operation takes
// the write lock and runs its statements inside one transaction via withTx,
// so concurrent callers never interleave read-modify-write cycles.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      logger.Logger

	organizations *organizationsTable
	categories    *categoriesTable
	subcategories *subcategoriesTable
	webpages      *webpagesTable
	meta          *metaTable
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance. The backend is not
// attached; call Attach with a Config to initialize. A nil log is replaced
// with a no-op logger.
func NewBackend(log logger.Logger) *Backend {
	if log == nil {
		log = logger.Nop()
	}
	return &Backend{log: log}
}

// Attach initializes the backend with the given configuration. Creates
// DataDir if it does not exist, applies the schema on first open, and seeds
// the default organization, collection, and group when the store is empty.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	fresh := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fresh = true
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return err
	}

	if fresh {
		if err := applySchema(db); err != nil {
			db.Close()
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true

	b.organizations = &organizationsTable{backend: b}
	b.categories = &categoriesTable{backend: b}
	b.subcategories = &subcategoriesTable{backend: b}
	b.webpages = &webpagesTable{backend: b}
	b.meta = &metaTable{backend: b}

	if err := b.seedLocked(); err != nil {
		b.detachLocked()
		return fmt.Errorf("seed defaults: %w", err)
	}

	b.log.Info("store attached",
		logger.String("data_dir", dataDir),
		logger.Bool("fresh", fresh))

	return nil
}

// Detach releases all resources held by the backend. Idempotent. After
// Detach, all table operations return ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.detachLocked()
}

func (b *Backend) detachLocked() error {
	if !b.attached {
		return nil // idempotent
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Organizations returns the organizations table.
func (b *Backend) Organizations() types.OrganizationTable { return b.organizations }

// Collections returns the collections (categories) table.
func (b *Backend) Collections() types.CollectionTable { return b.categories }

// Groups returns the groups (subcategories) table.
func (b *Backend) Groups() types.GroupTable { return b.subcategories }

// Cards returns the webpages table.
func (b *Backend) Cards() types.CardTable { return b.webpages }

// Meta returns the key-value metadata table.
func (b *Backend) Meta() types.MetaTable { return b.meta }

// ready reports whether table operations may proceed.
// Callers must hold b.mu (read or write).
func (b *Backend) ready() error {
	if !b.attached {
		return types.ErrStoreDetached
	}
	return nil
}

// withTx opens a transaction, runs fn, and commits when fn returns nil.
// If fn returns an error the transaction rolls back and no partial writes
// are visible. Every multi-statement mutation in the table accessors runs
// through here. Callers must hold b.mu for writing.
func (b *Backend) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// applySchema executes all CREATE TABLE and CREATE INDEX statements.
func applySchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// seedLocked creates the default organization, collection, and group when
// the store holds no organizations. Re-attaching an existing store is a
// no-op. Caller must hold b.mu for writing.
func (b *Backend) seedLocked() error {
	var count int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM organizations WHERE deleted = 0").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)
	orgID := newUUID()
	catID := newUUID()
	subID := newUUID()

	return b.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"INSERT INTO organizations (organization_id, name, ordinal, created_at, updated_at) VALUES (?, ?, 0, ?, ?)",
			orgID, types.DefaultOrganizationName, nowStr, nowStr,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO categories (category_id, organization_id, name, color, ordinal, is_default, created_at, updated_at) VALUES (?, ?, ?, ?, 0, 1, ?, ?)",
			catID, orgID, types.DefaultCollectionName, types.DefaultCollectionColor, nowStr, nowStr,
		); err != nil {
			return err
		}
		_, err := tx.Exec(
			"INSERT INTO subcategories (subcategory_id, category_id, name, ordinal, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)",
			subID, catID, types.DefaultGroupName, nowStr, nowStr,
		)
		return err
	})
}

// newUUID generates a UUID v7 string, falling back to v4 if v7 fails.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
