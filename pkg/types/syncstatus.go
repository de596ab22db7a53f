package types

import "time"

// SyncStatus describes background backup state. It is mutated only by the
// reconciler and read-only from everywhere else; the persisted copy lives
// under MetaKeySyncStatus so the UI can render state without polling the
// remote.
type SyncStatus struct {
	Connected        bool       // A remote is configured and reachable as of last contact.
	Syncing          bool       // A push or pull is in flight.
	PendingPush      bool       // A local change awaits the debounced push.
	Auto             bool       // Automatic push-on-change is enabled.
	LastUploadedAt   *time.Time // Completion time of the last successful push.
	LastDownloadedAt *time.Time // Completion time of the last successful pull.
	LastChecksum     string     // Checksum of the last snapshot pushed or pulled.
	Error            string     // Last failure, empty when healthy.
}

// Meta table keys used by the engine.
const (
	// MetaKeyWebpageOrder holds the legacy global order list covering all
	// cards, kept for datasets created before per-group ordering.
	MetaKeyWebpageOrder = "order.webpages"

	// MetaKeyGroupOrderPrefix prefixes per-group order list keys; the full
	// key is MetaKeyGroupOrderPrefix + groupID.
	MetaKeyGroupOrderPrefix = "order.group."

	// MetaKeySelectedCollectionPrefix prefixes the per-organization
	// selected-collection setting; the full key is the prefix + orgID.
	MetaKeySelectedCollectionPrefix = "selectedCategoryId:"

	// MetaKeySyncStatus holds the persisted SyncStatus record.
	MetaKeySyncStatus = "sync.status"
)
