// Tests for backend lifecycle: attach, detach, schema, seeding.
package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/linktrove/linktrove/pkg/types"
)

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend(nil)
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	// Verify database file created
	dbPath := filepath.Join(tmpDir, DBFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file not created")
	}

	// Verify double attach fails
	if err := b.Attach(config); !errors.Is(err, types.ErrAlreadyAttached) {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}
}

func TestBackend_AttachRejectsBadConfig(t *testing.T) {
	b := NewBackend(nil)

	err := b.Attach(types.Config{Backend: "", DataDir: t.TempDir()})
	if !errors.Is(err, types.ErrBackendEmpty) {
		t.Errorf("expected ErrBackendEmpty, got %v", err)
	}

	err = b.Attach(types.Config{Backend: "papyrus", DataDir: t.TempDir()})
	if !errors.Is(err, types.ErrBackendUnknown) {
		t.Errorf("expected ErrBackendUnknown, got %v", err)
	}
}

func TestBackend_Detach(t *testing.T) {
	b := newTestBackend(t)

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	// Verify idempotent
	if err := b.Detach(); err != nil {
		t.Errorf("second Detach should not error, got %v", err)
	}

	// Verify operations fail after detach
	if _, err := b.Organizations().List(); !errors.Is(err, types.ErrStoreDetached) {
		t.Errorf("expected ErrStoreDetached, got %v", err)
	}
	if _, err := b.Cards().Get("any"); !errors.Is(err, types.ErrStoreDetached) {
		t.Errorf("expected ErrStoreDetached, got %v", err)
	}
}

func TestBackend_SeedsDefaults(t *testing.T) {
	b := newTestBackend(t)

	orgs, err := b.Organizations().List()
	if err != nil {
		t.Fatalf("List organizations failed: %v", err)
	}
	if len(orgs) != 1 || orgs[0].Name != types.DefaultOrganizationName {
		t.Fatalf("organizations = %v, want one named %q", orgs, types.DefaultOrganizationName)
	}

	collections, err := b.Collections().List(orgs[0].ID)
	if err != nil {
		t.Fatalf("List collections failed: %v", err)
	}
	if len(collections) != 1 || collections[0].Name != types.DefaultCollectionName {
		t.Fatalf("collections = %v, want one named %q", collections, types.DefaultCollectionName)
	}
	if !collections[0].IsDefault {
		t.Error("seeded collection not marked default")
	}
	if collections[0].Color != types.DefaultCollectionColor {
		t.Errorf("seeded color = %q, want %q", collections[0].Color, types.DefaultCollectionColor)
	}

	groups, err := b.Groups().List(collections[0].ID)
	if err != nil {
		t.Fatalf("List groups failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != types.DefaultGroupName {
		t.Fatalf("groups = %v, want one named %q", groups, types.DefaultGroupName)
	}
}

func TestBackend_ReattachDoesNotReseed(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	b := NewBackend(nil)
	if err := b.Attach(cfg); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	_, collectionID, _ := seededIDs(t, b)
	if _, err := b.Groups().Create(collectionID, "extra"); err != nil {
		t.Fatalf("Create group failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	b2 := NewBackend(nil)
	if err := b2.Attach(cfg); err != nil {
		t.Fatalf("re-Attach failed: %v", err)
	}
	defer b2.Detach()

	orgs, err := b2.Organizations().List()
	if err != nil {
		t.Fatalf("List organizations failed: %v", err)
	}
	if len(orgs) != 1 {
		t.Errorf("organizations after reattach = %d, want 1", len(orgs))
	}
	groups, err := b2.Groups().List(collectionID)
	if err != nil {
		t.Fatalf("List groups failed: %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("groups after reattach = %d, want 2", len(groups))
	}
}
