// Package integration provides shared helpers for end-to-end tests that
// exercise the public App facade over a real SQLite store, and the sync
// stack against an in-process snapshot server.
package integration

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linktrove/linktrove/internal/server"
	"github.com/linktrove/linktrove/internal/syncer"
	"github.com/linktrove/linktrove/pkg/linktrove"
	"github.com/linktrove/linktrove/pkg/types"
)

var testSecret = []byte("integration-secret")

// newApp opens an App over an isolated temp directory. Each test gets its
// own store.
func newApp(t *testing.T) *linktrove.App {
	t.Helper()
	app, err := linktrove.Open(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

// seededWorkspace returns the IDs of the seeded organization, collection,
// and group.
func seededWorkspace(t *testing.T, app *linktrove.App) (orgID, collectionID, groupID string) {
	t.Helper()
	org, err := app.DefaultOrganization()
	require.NoError(t, err)
	cols, err := app.Store().Collections().List(org.ID)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	grp, err := app.DefaultGroup(cols[0].ID)
	require.NoError(t, err)
	return org.ID, cols[0].ID, grp.ID
}

// mustSaveTab saves a browser tab into a group and returns the card.
func mustSaveTab(t *testing.T, app *linktrove.App, groupID, url, title string) *types.Card {
	t.Helper()
	card, err := app.SaveTab(groupID, types.TabPayload{URL: url, Title: title})
	require.NoError(t, err)
	return card
}

// cardOrder returns the display-ordered card IDs in a group.
func cardOrder(t *testing.T, app *linktrove.App, groupID string) []string {
	t.Helper()
	cards, err := app.CardsInGroup(groupID)
	require.NoError(t, err)
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

// newSnapshotServer starts an in-process snapshot server and returns a
// factory producing remotes authenticated as a given subject.
func newSnapshotServer(t *testing.T) func(subject string) *syncer.HTTPRemote {
	t.Helper()
	srv := server.New(server.Config{Secret: testSecret, DataDir: t.TempDir()}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return func(subject string) *syncer.HTTPRemote {
		token, err := server.IssueToken(testSecret, subject, time.Hour)
		require.NoError(t, err)
		return syncer.NewHTTPRemote(ts.URL, token)
	}
}

// newReconciler wires a reconciler over the app's store and the remote.
func newReconciler(app *linktrove.App, remote syncer.Remote, auto bool, debounce time.Duration) *syncer.Reconciler {
	return syncer.New(app.Store(), remote, types.SyncConfig{Auto: auto, Debounce: debounce}, nil)
}
