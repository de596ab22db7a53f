// End-to-end sync: two stores converging through the snapshot server,
// last-writer-wins pushes, pull restoring exact order, debounced auto
// push after local mutations, and per-subject isolation on the server.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linktrove/linktrove/internal/syncer"
)

func TestSync_TwoStoresConverge(t *testing.T) {
	remote := newSnapshotServer(t)("shared")
	ctx := context.Background()

	src := newApp(t)
	_, _, srcGroup := seededWorkspace(t, src)
	b := mustSaveTab(t, src, srcGroup, "https://example.com/b", "b")
	a := mustSaveTab(t, src, srcGroup, "https://example.com/a", "a")
	_, err := src.MoveCardToEnd(a.ID)
	require.NoError(t, err)
	require.Equal(t, []string{b.ID, a.ID}, cardOrder(t, src, srcGroup))

	// First connect finds the remote empty and uploads.
	up := newReconciler(src, remote, false, 0)
	require.NoError(t, up.Connect(ctx))
	status := up.Status()
	assert.True(t, status.Connected)
	assert.NotNil(t, status.LastUploadedAt)
	assert.NotEmpty(t, status.LastChecksum)

	// A second store pulls the snapshot and lands on identical content,
	// order lists included.
	dst := newApp(t)
	down := newReconciler(dst, remote, false, 0)
	require.NoError(t, down.Pull(ctx))

	assert.Equal(t, []string{b.ID, a.ID}, cardOrder(t, dst, srcGroup))
	srcSum, err := src.Checksum()
	require.NoError(t, err)
	dstSum, err := dst.Checksum()
	require.NoError(t, err)
	assert.Equal(t, srcSum, dstSum)
	assert.Equal(t, srcSum, down.Status().LastChecksum)
}

func TestSync_ConnectWithMatchingChecksumSkipsTransfer(t *testing.T) {
	remote := newSnapshotServer(t)("steady")
	ctx := context.Background()

	app := newApp(t)
	rec := newReconciler(app, remote, false, 0)
	require.NoError(t, rec.Connect(ctx))
	first := rec.Status()
	require.NotNil(t, first.LastUploadedAt)

	// Reconnecting with unchanged content leaves the timestamps alone.
	rec.Disconnect()
	again := newReconciler(app, remote, false, 0)
	require.NoError(t, again.Connect(ctx))
	status := again.Status()
	assert.True(t, status.Connected)
	assert.Nil(t, status.LastDownloadedAt)
	assert.Equal(t, first.LastChecksum, status.LastChecksum)
}

func TestSync_AutoPushDebouncesMutations(t *testing.T) {
	remote := newSnapshotServer(t)("auto")
	ctx := context.Background()

	app := newApp(t)
	_, _, groupID := seededWorkspace(t, app)
	rec := newReconciler(app, remote, true, 40*time.Millisecond)
	app.SetOnChange(rec.NotifyChange)
	require.NoError(t, rec.Connect(ctx))
	baseline := rec.Status().LastUploadedAt

	// A burst of edits collapses into a single upload; each save feeds the
	// reconciler through the app's change hook.
	for i := 0; i < 3; i++ {
		mustSaveTab(t, app, groupID, "https://example.com/auto", "")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := rec.Status()
		if !s.PendingPush && s.LastUploadedAt != nil && (baseline == nil || s.LastUploadedAt.After(*baseline)) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	status := rec.Status()
	require.False(t, status.PendingPush, "debounced push never fired")

	meta, err := remote.Meta(ctx)
	require.NoError(t, err)
	sum, err := app.Checksum()
	require.NoError(t, err)
	assert.Equal(t, sum, meta.Checksum)

	rec.Disconnect()
}

func TestSync_SubjectsAreIsolated(t *testing.T) {
	ctx := context.Background()
	remoteFor := newSnapshotServer(t)

	src := newApp(t)
	_, _, groupID := seededWorkspace(t, src)
	mustSaveTab(t, src, groupID, "https://example.com/private", "")
	require.NoError(t, newReconciler(src, remoteFor("alice"), false, 0).Push(ctx))

	// Bob's view of the same server holds no snapshot.
	bobStore := newApp(t)
	bob := newReconciler(bobStore, remoteFor("bob"), false, 0)
	err := bob.Pull(ctx)
	assert.ErrorIs(t, err, syncer.ErrRemoteEmpty)
}
