// Shared test helpers for the SQLite backend.
package sqlite

import (
	"testing"

	"github.com/linktrove/linktrove/pkg/types"
)

// newTestBackend attaches a backend to a throwaway data directory. The
// store is seeded with the default organization, collection, and group.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend(nil)
	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	if err := b.Attach(cfg); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	t.Cleanup(func() { b.Detach() })
	return b
}

// seededIDs returns the IDs of the seeded organization, collection, and
// group.
func seededIDs(t *testing.T, b *Backend) (orgID, collectionID, groupID string) {
	t.Helper()
	orgs, err := b.Organizations().List()
	if err != nil || len(orgs) != 1 {
		t.Fatalf("organizations = %v (err %v), want exactly one", orgs, err)
	}
	collections, err := b.Collections().List(orgs[0].ID)
	if err != nil || len(collections) != 1 {
		t.Fatalf("collections = %v (err %v), want exactly one", collections, err)
	}
	groups, err := b.Groups().List(collections[0].ID)
	if err != nil || len(groups) != 1 {
		t.Fatalf("groups = %v (err %v), want exactly one", groups, err)
	}
	return orgs[0].ID, collections[0].ID, groups[0].ID
}

// mustCreateCard inserts a card into the given collection and group.
func mustCreateCard(t *testing.T, b *Backend, collectionID, groupID, url string) *types.Card {
	t.Helper()
	card, err := b.Cards().Create(&types.Card{
		URL:          url,
		CollectionID: collectionID,
		GroupID:      groupID,
	})
	if err != nil {
		t.Fatalf("Create card failed: %v", err)
	}
	return card
}
