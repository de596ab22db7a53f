package linktrove

import (
	"errors"
	"testing"

	"github.com/linktrove/linktrove/internal/order"
	"github.com/linktrove/linktrove/pkg/types"
)

// newTestApp opens an App over a throwaway data directory.
func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := Open(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

// seeded returns the IDs of the seeded organization, collection, and group.
func seeded(t *testing.T, app *App) (orgID, collectionID, groupID string) {
	t.Helper()
	org, err := app.DefaultOrganization()
	if err != nil {
		t.Fatalf("DefaultOrganization failed: %v", err)
	}
	cols, err := app.Store().Collections().List(org.ID)
	if err != nil || len(cols) != 1 {
		t.Fatalf("collections = %v (err %v), want one", cols, err)
	}
	grp, err := app.DefaultGroup(cols[0].ID)
	if err != nil {
		t.Fatalf("DefaultGroup failed: %v", err)
	}
	return org.ID, cols[0].ID, grp.ID
}

func saveTab(t *testing.T, app *App, groupID, url string) *types.Card {
	t.Helper()
	card, err := app.SaveTab(groupID, types.TabPayload{URL: url})
	if err != nil {
		t.Fatalf("SaveTab(%s) failed: %v", url, err)
	}
	return card
}

func groupOrder(t *testing.T, app *App, groupID string) []string {
	t.Helper()
	cards, err := app.CardsInGroup(groupID)
	if err != nil {
		t.Fatalf("CardsInGroup failed: %v", err)
	}
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func wantOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestApp_SaveTabLandsAtFront(t *testing.T) {
	app := newTestApp(t)
	_, _, groupID := seeded(t, app)

	a := saveTab(t, app, groupID, "https://example.com/a")
	b := saveTab(t, app, groupID, "https://example.com/b")
	c := saveTab(t, app, groupID, "https://example.com/c")

	wantOrder(t, groupOrder(t, app, groupID), []string{c.ID, b.ID, a.ID})
}

func TestApp_SaveTabBefore(t *testing.T) {
	app := newTestApp(t)
	_, _, groupID := seeded(t, app)

	a := saveTab(t, app, groupID, "https://example.com/a")
	b := saveTab(t, app, groupID, "https://example.com/b")

	// Before a specific card.
	mid, err := app.SaveTabBefore(groupID, types.TabPayload{URL: "https://example.com/m"}, a.ID)
	if err != nil {
		t.Fatalf("SaveTabBefore failed: %v", err)
	}
	// Empty beforeID appends.
	last, err := app.SaveTabBefore(groupID, types.TabPayload{URL: "https://example.com/z"}, "")
	if err != nil {
		t.Fatalf("SaveTabBefore failed: %v", err)
	}

	wantOrder(t, groupOrder(t, app, groupID), []string{b.ID, mid.ID, a.ID, last.ID})
}

func TestApp_SaveTabUnknownGroup(t *testing.T) {
	app := newTestApp(t)

	if _, err := app.SaveTab("ghost", types.TabPayload{URL: "https://example.com"}); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestApp_ReorderCard(t *testing.T) {
	app := newTestApp(t)
	_, _, groupID := seeded(t, app)

	// Build display order [a b c] via explicit inserts.
	c := saveTab(t, app, groupID, "https://example.com/c")
	b := saveTab(t, app, groupID, "https://example.com/b")
	a := saveTab(t, app, groupID, "https://example.com/a")
	wantOrder(t, groupOrder(t, app, groupID), []string{a.ID, b.ID, c.ID})

	// Moving a before c: the removal happens first, so a lands directly
	// ahead of c.
	if _, err := app.ReorderCard(a.ID, c.ID); err != nil {
		t.Fatalf("ReorderCard failed: %v", err)
	}
	wantOrder(t, groupOrder(t, app, groupID), []string{b.ID, a.ID, c.ID})

	// And back to the front.
	if _, err := app.ReorderCard(c.ID, b.ID); err != nil {
		t.Fatalf("ReorderCard failed: %v", err)
	}
	wantOrder(t, groupOrder(t, app, groupID), []string{c.ID, b.ID, a.ID})
}

func TestApp_ReorderUnknownCardIsNoOp(t *testing.T) {
	app := newTestApp(t)
	_, _, groupID := seeded(t, app)
	a := saveTab(t, app, groupID, "https://example.com/a")

	list, err := app.ReorderCard("ghost", a.ID)
	if err != nil {
		t.Fatalf("ReorderCard returned error: %v", err)
	}
	if list != nil {
		t.Errorf("list = %v, want nil no-op", list)
	}
	wantOrder(t, groupOrder(t, app, groupID), []string{a.ID})
}

func TestApp_MoveCardToEnd(t *testing.T) {
	app := newTestApp(t)
	_, _, groupID := seeded(t, app)

	c := saveTab(t, app, groupID, "https://example.com/c")
	b := saveTab(t, app, groupID, "https://example.com/b")
	a := saveTab(t, app, groupID, "https://example.com/a")

	if _, err := app.MoveCardToEnd(a.ID); err != nil {
		t.Fatalf("MoveCardToEnd failed: %v", err)
	}
	wantOrder(t, groupOrder(t, app, groupID), []string{b.ID, c.ID, a.ID})
}

func TestApp_MoveCardAcrossGroups(t *testing.T) {
	app := newTestApp(t)
	_, collectionID, groupID := seeded(t, app)

	other, err := app.Store().Groups().Create(collectionID, "other")
	if err != nil {
		t.Fatalf("Create group failed: %v", err)
	}

	a := saveTab(t, app, groupID, "https://example.com/a")
	x := saveTab(t, app, other.ID, "https://example.com/x")
	y := saveTab(t, app, other.ID, "https://example.com/y")
	wantOrder(t, groupOrder(t, app, other.ID), []string{y.ID, x.ID})

	// Move a into the other group, ahead of x.
	if err := app.MoveCard(a.ID, other.ID, x.ID); err != nil {
		t.Fatalf("MoveCard failed: %v", err)
	}

	wantOrder(t, groupOrder(t, app, groupID), nil)
	wantOrder(t, groupOrder(t, app, other.ID), []string{y.ID, a.ID, x.ID})

	moved, err := app.Store().Cards().Get(a.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if moved.GroupID != other.ID {
		t.Errorf("card group = %s, want %s", moved.GroupID, other.ID)
	}
}

func TestApp_UpdateCardGroupChangeFixesOrders(t *testing.T) {
	app := newTestApp(t)
	_, collectionID, groupID := seeded(t, app)
	other, _ := app.Store().Groups().Create(collectionID, "other")

	a := saveTab(t, app, groupID, "https://example.com/a")
	x := saveTab(t, app, other.ID, "https://example.com/x")

	if _, err := app.UpdateCard(a.ID, types.CardPatch{GroupID: &other.ID}); err != nil {
		t.Fatalf("UpdateCard failed: %v", err)
	}
	wantOrder(t, groupOrder(t, app, groupID), nil)
	wantOrder(t, groupOrder(t, app, other.ID), []string{x.ID, a.ID})
}

func TestApp_DeleteCardCleansOrderList(t *testing.T) {
	app := newTestApp(t)
	_, _, groupID := seeded(t, app)

	b := saveTab(t, app, groupID, "https://example.com/b")
	a := saveTab(t, app, groupID, "https://example.com/a")

	if err := app.DeleteCard(a.ID); err != nil {
		t.Fatalf("DeleteCard failed: %v", err)
	}
	wantOrder(t, groupOrder(t, app, groupID), []string{b.ID})

	list, err := app.Orders().List(order.GroupScope(groupID))
	if err != nil {
		t.Fatalf("List order failed: %v", err)
	}
	for _, id := range list {
		if id == a.ID {
			t.Errorf("deleted card id still in order list %v", list)
		}
	}
}

func TestApp_DeleteCardsBatch(t *testing.T) {
	app := newTestApp(t)
	_, collectionID, groupID := seeded(t, app)
	other, _ := app.Store().Groups().Create(collectionID, "other")

	a := saveTab(t, app, groupID, "https://example.com/a")
	x := saveTab(t, app, other.ID, "https://example.com/x")
	keep := saveTab(t, app, groupID, "https://example.com/keep")

	if err := app.DeleteCards([]string{a.ID, x.ID, "ghost"}); err != nil {
		t.Fatalf("DeleteCards failed: %v", err)
	}
	wantOrder(t, groupOrder(t, app, groupID), []string{keep.ID})
	wantOrder(t, groupOrder(t, app, other.ID), nil)
}

func TestApp_DeleteLastGroupRejected(t *testing.T) {
	app := newTestApp(t)
	_, collectionID, groupID := seeded(t, app)

	opts := types.GroupDeleteOptions{Mode: types.GroupDeleteWithPages}
	if err := app.DeleteGroup(groupID, opts); !errors.Is(err, types.ErrLastGroup) {
		t.Fatalf("error = %v, want ErrLastGroup", err)
	}

	// With a second group present the delete goes through.
	other, err := app.Store().Groups().Create(collectionID, "other")
	if err != nil {
		t.Fatalf("Create group failed: %v", err)
	}
	if err := app.DeleteGroup(other.ID, opts); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
}

func TestApp_DeleteGroupReassignKeepsRelativeOrder(t *testing.T) {
	app := newTestApp(t)
	_, collectionID, groupID := seeded(t, app)
	doomed, _ := app.Store().Groups().Create(collectionID, "doomed")

	keep := saveTab(t, app, groupID, "https://example.com/keep")
	a2 := saveTab(t, app, doomed.ID, "https://example.com/a2")
	a1 := saveTab(t, app, doomed.ID, "https://example.com/a1")
	wantOrder(t, groupOrder(t, app, doomed.ID), []string{a1.ID, a2.ID})

	opts := types.GroupDeleteOptions{Mode: types.GroupDeleteReassign, ReassignTo: groupID}
	if err := app.DeleteGroup(doomed.ID, opts); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	// Reassigned cards land after the target's own, preserving their
	// relative order; the doomed group's order scope is gone.
	wantOrder(t, groupOrder(t, app, groupID), []string{keep.ID, a1.ID, a2.ID})
	list, err := app.Orders().List(order.GroupScope(doomed.ID))
	if err != nil {
		t.Fatalf("List order failed: %v", err)
	}
	if list != nil {
		t.Errorf("doomed scope = %v, want dropped", list)
	}
}

func TestApp_DeleteLastCollectionRejected(t *testing.T) {
	app := newTestApp(t)
	orgID, collectionID, _ := seeded(t, app)

	if err := app.DeleteCollection(collectionID); !errors.Is(err, types.ErrLastCollection) {
		t.Fatalf("error = %v, want ErrLastCollection", err)
	}

	other, err := app.CreateCollection(orgID, "Other", "")
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	if err := app.DeleteCollection(other.ID); err != nil {
		t.Fatalf("DeleteCollection failed: %v", err)
	}
}

func TestApp_CreateCollectionSeedsGroup(t *testing.T) {
	app := newTestApp(t)
	orgID, _, _ := seeded(t, app)

	col, err := app.CreateCollection(orgID, "Fresh", "")
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	groups, err := app.Store().Groups().List(col.ID)
	if err != nil {
		t.Fatalf("List groups failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != types.DefaultGroupName {
		t.Errorf("groups = %v, want one default group", groups)
	}
}

func TestApp_SelectedCollectionFallsBack(t *testing.T) {
	app := newTestApp(t)
	orgID, collectionID, _ := seeded(t, app)

	got, err := app.SelectedCollection(orgID)
	if err != nil {
		t.Fatalf("SelectedCollection failed: %v", err)
	}
	if got != collectionID {
		t.Errorf("selection = %s, want first collection %s", got, collectionID)
	}

	other, _ := app.CreateCollection(orgID, "Other", "")
	if err := app.SelectCollection(orgID, other.ID); err != nil {
		t.Fatalf("SelectCollection failed: %v", err)
	}
	got, err = app.SelectedCollection(orgID)
	if err != nil {
		t.Fatalf("SelectedCollection failed: %v", err)
	}
	if got != other.ID {
		t.Errorf("selection = %s, want %s", got, other.ID)
	}
}

func TestApp_SelectionFallsBackAfterCollectionDelete(t *testing.T) {
	app := newTestApp(t)
	orgID, collectionID, _ := seeded(t, app)

	other, err := app.CreateCollection(orgID, "Other", "")
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	if err := app.SelectCollection(orgID, other.ID); err != nil {
		t.Fatalf("SelectCollection failed: %v", err)
	}
	if err := app.DeleteCollection(other.ID); err != nil {
		t.Fatalf("DeleteCollection failed: %v", err)
	}

	// The selection pointed at the deleted collection; it must fall back
	// to a live one, never return the dangling ID.
	got, err := app.SelectedCollection(orgID)
	if err != nil {
		t.Fatalf("SelectedCollection failed: %v", err)
	}
	if got == other.ID {
		t.Fatalf("selection = deleted collection %s", got)
	}
	if got != collectionID {
		t.Errorf("selection = %s, want surviving collection %s", got, collectionID)
	}
	if _, err := app.Store().Collections().Get(got); err != nil {
		t.Errorf("selected collection not live: %v", err)
	}
}

func TestApp_SelectionIgnoresStaleID(t *testing.T) {
	app := newTestApp(t)
	orgID, collectionID, _ := seeded(t, app)

	// A selection key can reference an ID absent from the dataset, for
	// example after a pull replaced everything.
	key := types.MetaKeySelectedCollectionPrefix + orgID
	if err := app.Store().Meta().Set(key, "ghost"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := app.SelectedCollection(orgID)
	if err != nil {
		t.Fatalf("SelectedCollection failed: %v", err)
	}
	if got != collectionID {
		t.Errorf("selection = %s, want %s", got, collectionID)
	}
}

func TestApp_OnChangeFiresPerMutation(t *testing.T) {
	app := newTestApp(t)
	_, _, groupID := seeded(t, app)

	var fired int
	app.SetOnChange(func() { fired++ })

	a := saveTab(t, app, groupID, "https://example.com/a")
	b := saveTab(t, app, groupID, "https://example.com/b")
	if fired != 2 {
		t.Fatalf("fired = %d after two saves, want 2", fired)
	}

	if _, err := app.ReorderCard(a.ID, b.ID); err != nil {
		t.Fatalf("ReorderCard failed: %v", err)
	}
	if fired != 3 {
		t.Fatalf("fired = %d after reorder, want 3", fired)
	}

	// The unknown-id no-op mutates nothing, so nothing to announce.
	if _, err := app.ReorderCard("ghost", a.ID); err != nil {
		t.Fatalf("ReorderCard failed: %v", err)
	}
	if fired != 3 {
		t.Fatalf("fired = %d after no-op, want 3", fired)
	}

	if err := app.DeleteCard(a.ID); err != nil {
		t.Fatalf("DeleteCard failed: %v", err)
	}
	if fired != 4 {
		t.Fatalf("fired = %d after delete, want 4", fired)
	}

	// Imports never fire the hook: a pull must not push itself back.
	doc, err := app.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if err := app.Import(doc); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if fired != 4 {
		t.Errorf("fired = %d after import, want 4", fired)
	}
}

func TestApp_ChecksumTracksContent(t *testing.T) {
	app := newTestApp(t)
	_, _, groupID := seeded(t, app)

	before, err := app.Checksum()
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}
	again, err := app.Checksum()
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}
	if before != again {
		t.Error("checksum of unchanged dataset differs")
	}

	saveTab(t, app, groupID, "https://example.com/a")
	after, err := app.Checksum()
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}
	if after == before {
		t.Error("checksum did not change after a mutation")
	}
}
