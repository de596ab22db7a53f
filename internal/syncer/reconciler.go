package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/linktrove/linktrove/internal/export"
	"github.com/linktrove/linktrove/internal/logger"
	"github.com/linktrove/linktrove/pkg/types"
)

// DefaultDebounce collapses rapid local mutations into one push.
const DefaultDebounce = 2 * time.Second

// suppressWindow ignores change notifications briefly after applying a
// pulled snapshot, so the import's own writes do not schedule a push of
// the data that was just downloaded.
const suppressWindow = 500 * time.Millisecond

// LocalStore is the reconciler's view of the local dataset. Both
// *sqlite.Backend and the linktrove.Store facade satisfy it.
type LocalStore interface {
	ExportDataset() (*export.Document, error)
	ImportDataset(doc *export.Document) error
	Meta() types.MetaTable
}

// Reconciler keeps the local dataset and a remote snapshot converged.
// Pushes replace the remote wholesale; pulls replace local wholesale. The
// newer side wins at connect time. All failures are captured into the
// status record rather than surfaced to mutation paths.
type Reconciler struct {
	store    LocalStore
	remote   Remote
	log      logger.Logger
	debounce time.Duration

	mu            sync.Mutex
	status        types.SyncStatus
	timer         *time.Timer
	suppressUntil time.Time
	now           func() time.Time
}

// New creates a reconciler. cfg.Debounce of zero selects DefaultDebounce.
// A nil log is replaced with a no-op logger.
func New(store LocalStore, remote Remote, cfg types.SyncConfig, log logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	r := &Reconciler{
		store:    store,
		remote:   remote,
		log:      log,
		debounce: debounce,
		now:      time.Now,
	}
	// Restore sticky fields from the persisted record; transient flags
	// never survive a restart.
	var persisted types.SyncStatus
	if err := store.Meta().Get(types.MetaKeySyncStatus, &persisted); err == nil {
		r.status.LastUploadedAt = persisted.LastUploadedAt
		r.status.LastDownloadedAt = persisted.LastDownloadedAt
		r.status.LastChecksum = persisted.LastChecksum
	}
	r.status.Auto = cfg.Auto
	return r
}

// Status returns a copy of the current status record.
func (r *Reconciler) Status() types.SyncStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Connect contacts the remote and converges the two sides: an empty
// remote receives the local dataset, a remote modified after the last
// local sync replaces the local dataset, and anything else is pushed.
func (r *Reconciler) Connect(ctx context.Context) error {
	meta, err := r.remote.Meta(ctx)
	switch {
	case errors.Is(err, ErrRemoteEmpty):
		if err := r.Push(ctx); err != nil {
			return err
		}
	case err != nil:
		r.fail("connect", err)
		return err
	default:
		if err := r.converge(ctx, meta); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.status.Connected = true
	r.status.Error = ""
	r.persistLocked()
	r.mu.Unlock()
	return nil
}

// converge resolves an existing remote snapshot against local state.
func (r *Reconciler) converge(ctx context.Context, meta RemoteMeta) error {
	local, err := r.localChecksum()
	if err != nil {
		r.fail("checksum", err)
		return err
	}
	if meta.Checksum == local {
		return nil
	}
	if meta.ModifiedAt.After(r.lastSyncedAt()) {
		return r.Pull(ctx)
	}
	return r.Push(ctx)
}

// Disconnect stops background pushes and marks the remote unreachable. A
// pending change survives and is pushed on the next connect.
func (r *Reconciler) Disconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.status.Connected = false
	r.persistLocked()
}

// NotifyChange marks a local mutation and, when automatic sync is on and
// the remote is connected, (re)arms the debounced push. Notifications
// inside the post-pull suppression window are dropped.
func (r *Reconciler) NotifyChange() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.now().Before(r.suppressUntil) {
		return
	}
	r.status.PendingPush = true
	r.persistLocked()

	if !r.status.Auto || !r.status.Connected {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, func() {
		if err := r.Push(context.Background()); err != nil {
			r.log.Warn("background push failed", logger.Err(err))
		}
	})
}

// Push uploads the local dataset now, cancelling any armed debounce.
func (r *Reconciler) Push(ctx context.Context) error {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.status.Syncing = true
	r.persistLocked()
	r.mu.Unlock()

	doc, err := r.store.ExportDataset()
	if err != nil {
		r.fail("export", err)
		return err
	}
	sum, err := export.Checksum(doc)
	if err != nil {
		r.fail("checksum", err)
		return err
	}
	if err := r.remote.Push(ctx, doc); err != nil {
		r.fail("push", err)
		return err
	}

	r.mu.Lock()
	now := r.now()
	r.status.Syncing = false
	r.status.PendingPush = false
	r.status.LastUploadedAt = &now
	r.status.LastChecksum = sum
	r.status.Error = ""
	r.persistLocked()
	r.mu.Unlock()

	r.log.Info("pushed snapshot", logger.String("checksum", sum))
	return nil
}

// Pull downloads the remote snapshot and replaces the local dataset
// wholesale, including exact per-group order.
func (r *Reconciler) Pull(ctx context.Context) error {
	r.mu.Lock()
	r.status.Syncing = true
	r.persistLocked()
	r.mu.Unlock()

	doc, err := r.remote.Pull(ctx)
	if err != nil {
		r.fail("pull", err)
		return err
	}
	sum, err := export.Checksum(doc)
	if err != nil {
		r.fail("checksum", err)
		return err
	}
	if err := r.store.ImportDataset(doc); err != nil {
		r.fail("import", err)
		return err
	}

	r.mu.Lock()
	now := r.now()
	r.status.Syncing = false
	r.status.PendingPush = false
	r.status.LastDownloadedAt = &now
	r.status.LastChecksum = sum
	r.status.Error = ""
	r.suppressUntil = now.Add(suppressWindow)
	r.persistLocked()
	r.mu.Unlock()

	r.log.Info("pulled snapshot", logger.String("checksum", sum))
	return nil
}

// fail records an error into the status without disturbing PendingPush,
// so the change is retried on the next trigger.
func (r *Reconciler) fail(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Syncing = false
	r.status.Error = op + ": " + err.Error()
	r.persistLocked()
	r.log.Warn("sync failure", logger.String("op", op), logger.Err(err))
}

// localChecksum hashes the current local dataset.
func (r *Reconciler) localChecksum() (string, error) {
	doc, err := r.store.ExportDataset()
	if err != nil {
		return "", err
	}
	return export.Checksum(doc)
}

// lastSyncedAt returns the later of the last push and last pull.
func (r *Reconciler) lastSyncedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	var t time.Time
	if r.status.LastUploadedAt != nil {
		t = *r.status.LastUploadedAt
	}
	if r.status.LastDownloadedAt != nil && r.status.LastDownloadedAt.After(t) {
		t = *r.status.LastDownloadedAt
	}
	return t
}

// persistLocked writes the status record to the meta table. Persistence
// failures are logged, never surfaced. Caller must hold r.mu.
func (r *Reconciler) persistLocked() {
	if err := r.store.Meta().Set(types.MetaKeySyncStatus, r.status); err != nil {
		r.log.Warn("persisting sync status failed", logger.Err(err))
	}
}
