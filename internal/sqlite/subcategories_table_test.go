// Tests for the groups (subcategories) table.
package sqlite

import (
	"errors"
	"testing"

	"github.com/linktrove/linktrove/pkg/types"
)

func TestGroups_CreateAssignsNextOrdinal(t *testing.T) {
	b := newTestBackend(t)
	_, collectionID, _ := seededIDs(t, b)

	g1, err := b.Groups().Create(collectionID, "reading")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	g2, err := b.Groups().Create(collectionID, "later")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g2.Order <= g1.Order {
		t.Errorf("ordinals = %d then %d, want strictly increasing", g1.Order, g2.Order)
	}

	groups, err := b.Groups().List(collectionID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if groups[1].ID != g1.ID || groups[2].ID != g2.ID {
		t.Errorf("list order = %v, want creation order after the seed", groups)
	}
}

func TestGroups_CreateBlankNameFallsBack(t *testing.T) {
	b := newTestBackend(t)
	_, collectionID, _ := seededIDs(t, b)

	g, err := b.Groups().Create(collectionID, "   ")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.Name != types.DefaultGroupName {
		t.Errorf("name = %q, want %q", g.Name, types.DefaultGroupName)
	}
}

func TestGroups_CreateUnknownCollection(t *testing.T) {
	b := newTestBackend(t)

	if _, err := b.Groups().Create("nope", "x"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGroups_RenameBlankFallsBack(t *testing.T) {
	b := newTestBackend(t)
	_, _, groupID := seededIDs(t, b)

	g, err := b.Groups().Rename(groupID, "  queue  ")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if g.Name != "queue" {
		t.Errorf("name = %q, want trimmed %q", g.Name, "queue")
	}

	g, err = b.Groups().Rename(groupID, "   ")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if g.Name != types.DefaultGroupName {
		t.Errorf("name = %q, want fallback %q", g.Name, types.DefaultGroupName)
	}
}

func TestGroups_ReorderMergesUnlisted(t *testing.T) {
	b := newTestBackend(t)
	_, collectionID, seedID := seededIDs(t, b)

	g1, _ := b.Groups().Create(collectionID, "one")
	g2, _ := b.Groups().Create(collectionID, "two")
	g3, _ := b.Groups().Create(collectionID, "three")

	// Only two of four listed: they come first, the rest keep their
	// relative order after them.
	if err := b.Groups().Reorder(collectionID, []string{g3.ID, g1.ID}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	groups, err := b.Groups().List(collectionID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	got := make([]string, len(groups))
	for i, g := range groups {
		got[i] = g.ID
	}
	want := []string{g3.ID, g1.ID, seedID, g2.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestGroups_ReorderIgnoresUnknownAndDuplicates(t *testing.T) {
	b := newTestBackend(t)
	_, collectionID, seedID := seededIDs(t, b)
	g1, _ := b.Groups().Create(collectionID, "one")

	if err := b.Groups().Reorder(collectionID, []string{g1.ID, "ghost", g1.ID}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	groups, err := b.Groups().List(collectionID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(groups) != 2 || groups[0].ID != g1.ID || groups[1].ID != seedID {
		t.Errorf("order = %v, want [%s %s]", groups, g1.ID, seedID)
	}
}

func TestGroups_DeleteReassignsCards(t *testing.T) {
	b := newTestBackend(t)
	_, collectionID, keepID := seededIDs(t, b)

	doomed, err := b.Groups().Create(collectionID, "doomed")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	card := mustCreateCard(t, b, collectionID, doomed.ID, "https://example.com/a")

	opts := types.GroupDeleteOptions{Mode: types.GroupDeleteReassign, ReassignTo: keepID}
	if err := b.Groups().Delete(doomed.ID, opts); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := b.Groups().Get(doomed.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("deleted group still readable: %v", err)
	}
	moved, err := b.Cards().Get(card.ID)
	if err != nil {
		t.Fatalf("Get card failed: %v", err)
	}
	if moved.GroupID != keepID {
		t.Errorf("card group = %s, want reassigned to %s", moved.GroupID, keepID)
	}
}

func TestGroups_DeleteReassignUnknownTarget(t *testing.T) {
	b := newTestBackend(t)
	_, collectionID, _ := seededIDs(t, b)
	doomed, _ := b.Groups().Create(collectionID, "doomed")

	opts := types.GroupDeleteOptions{Mode: types.GroupDeleteReassign, ReassignTo: "ghost"}
	if err := b.Groups().Delete(doomed.ID, opts); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown target, got %v", err)
	}
	// Nothing was removed.
	if _, err := b.Groups().Get(doomed.ID); err != nil {
		t.Errorf("group missing after failed delete: %v", err)
	}
}

func TestGroups_DeleteWithPages(t *testing.T) {
	b := newTestBackend(t)
	_, collectionID, _ := seededIDs(t, b)

	doomed, _ := b.Groups().Create(collectionID, "doomed")
	card := mustCreateCard(t, b, collectionID, doomed.ID, "https://example.com/a")

	opts := types.GroupDeleteOptions{Mode: types.GroupDeleteWithPages}
	if err := b.Groups().Delete(doomed.ID, opts); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := b.Cards().Get(card.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("card survived delete-with-pages: %v", err)
	}
}

// The table layer itself does not guard the last group; that check lives
// in the application layer, so a direct delete of the only group succeeds.
func TestGroups_DeleteLastGroupUnguardedHere(t *testing.T) {
	b := newTestBackend(t)
	_, collectionID, groupID := seededIDs(t, b)

	opts := types.GroupDeleteOptions{Mode: types.GroupDeleteWithPages}
	if err := b.Groups().Delete(groupID, opts); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	n, err := b.Groups().Count(collectionID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}
