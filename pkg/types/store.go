package types

import "errors"

// Store defines the interface for backend-agnostic storage access.
// Callers attach to a backend, access the typed tables, and detach when done.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist and seeds the default
	// organization, collection, and group on first open.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, table operations return ErrStoreDetached.
	Detach() error

	// Organizations returns the organizations table.
	Organizations() OrganizationTable

	// Collections returns the collections table.
	Collections() CollectionTable

	// Groups returns the groups table.
	Groups() GroupTable

	// Cards returns the webpages (cards) table.
	Cards() CardTable

	// Meta returns the key-value metadata table.
	Meta() MetaTable
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Table operation errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
)

// Invariant violation errors. Deleting the last group of a collection or the
// last collection of an organization is rejected before any mutation occurs.
var (
	ErrLastGroup      = errors.New("cannot delete the last group of a collection")
	ErrLastCollection = errors.New("cannot delete the last collection of an organization")
)

// OrganizationTable provides operations over organization records.
type OrganizationTable interface {
	// Create persists a new organization with the given name and returns it.
	Create(name string) (*Organization, error)

	// Get retrieves an organization by ID. Returns ErrNotFound if absent.
	Get(id string) (*Organization, error)

	// List returns all non-deleted organizations ordered by their order field.
	List() ([]*Organization, error)

	// SoftDelete marks an organization deleted without removing the row.
	SoftDelete(id string) error
}

// CollectionTable provides operations over collection records.
type CollectionTable interface {
	// Create persists a new collection under the given organization.
	Create(organizationID, name, color string) (*Collection, error)

	// Get retrieves a collection by ID. Returns ErrNotFound if absent
	// or soft-deleted.
	Get(id string) (*Collection, error)

	// Rename updates the collection name and bumps UpdatedAt.
	Rename(id, name string) (*Collection, error)

	// List returns the non-deleted collections of an organization ordered
	// by their order field.
	List(organizationID string) ([]*Collection, error)

	// Count returns the number of non-deleted collections in an organization.
	Count(organizationID string) (int, error)

	// SoftDelete marks a collection deleted and cascades per the cascade
	// table: member cards are soft-deleted, member groups hard-deleted,
	// all inside one transaction. It does not enforce the last-collection
	// invariant; that guard lives in the application layer.
	SoftDelete(id string) error
}

// GroupDeleteMode selects what happens to a deleted group's member cards.
type GroupDeleteMode int

const (
	// GroupDeleteReassign moves member cards to the group named in
	// GroupDeleteOptions.ReassignTo.
	GroupDeleteReassign GroupDeleteMode = iota

	// GroupDeleteWithPages hard-deletes member cards in the same
	// transaction as the group row.
	GroupDeleteWithPages
)

// GroupDeleteOptions configures GroupTable.Delete.
type GroupDeleteOptions struct {
	Mode       GroupDeleteMode
	ReassignTo string // target group ID when Mode is GroupDeleteReassign
}

// GroupTable provides operations over group (subcategory) records.
type GroupTable interface {
	// Create persists a new group in the collection with order set to
	// one past the highest existing order.
	Create(collectionID, name string) (*Group, error)

	// Get retrieves a group by ID. Returns ErrNotFound if absent.
	Get(id string) (*Group, error)

	// Rename trims and updates the group name. An empty trimmed name
	// falls back to "group" rather than erroring.
	Rename(id, name string) (*Group, error)

	// List returns the groups of a collection ordered by their order field.
	List(collectionID string) ([]*Group, error)

	// Count returns the number of groups in a collection.
	Count(collectionID string) (int, error)

	// Reorder rewrites group order fields to match position in orderedIDs.
	// Groups of the collection absent from orderedIDs are appended after
	// the listed ones preserving their relative order; this is a merge,
	// not a destructive replace.
	Reorder(collectionID string, orderedIDs []string) error

	// Delete removes a group. Member cards are reassigned or hard-deleted
	// per opts, in the same transaction as the group row removal. The
	// last-group invariant is not enforced here; that guard lives in the
	// application layer.
	Delete(id string, opts GroupDeleteOptions) error
}

// CardTable provides operations over webpage (card) records.
type CardTable interface {
	// Create validates and persists a new card. The URL must be an
	// absolute http(s) URL (ErrInvalidURL otherwise); the title falls
	// back to the URL hostname, then to "Untitled". Returns the full
	// persisted record.
	Create(card *Card) (*Card, error)

	// Get retrieves a card by ID. Returns ErrNotFound if absent or
	// soft-deleted.
	Get(id string) (*Card, error)

	// Update merges patch fields into the card, re-validating the URL
	// when present, and always bumps UpdatedAt. Fields absent from the
	// patch are never clobbered. Returns ErrNotFound if absent.
	Update(id string, patch CardPatch) (*Card, error)

	// Delete hard-deletes a card. Returns ErrNotFound if absent.
	Delete(id string) error

	// DeleteMany hard-deletes the given cards in one transaction.
	// Unknown IDs are skipped.
	DeleteMany(ids []string) error

	// ListByCollection returns the non-deleted cards of a collection in
	// natural order (most recently created first).
	ListByCollection(collectionID string) ([]*Card, error)

	// ListByGroup returns the non-deleted cards of a group in natural
	// order (most recently created first).
	ListByGroup(groupID string) ([]*Card, error)

	// SoftDeleteByCollection tombstones every card of a collection.
	// Cascade entry point for collection deletion.
	SoftDeleteByCollection(collectionID string) error
}

// MetaTable provides generic get/set of JSON-encoded values by string key,
// used for order snapshots and miscellaneous settings.
type MetaTable interface {
	// Get decodes the value stored under key into out.
	// Returns ErrNotFound if the key is absent.
	Get(key string, out any) error

	// Set stores value under key, JSON-encoded, replacing any previous value.
	Set(key string, value any) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
}
