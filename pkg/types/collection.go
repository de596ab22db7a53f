package types

import "time"

// Collection is a named bucket of groups scoped to one organization.
// Every organization retains at least one non-deleted collection; the
// application layer rejects deleting the last one.
type Collection struct {
	ID                string     // UUID v7, generated on creation.
	OrganizationID    string     // Owning organization.
	Name              string     // Display name.
	Color             string     // Display color (free-form, e.g. "#64748b").
	Order             float64    // Presentation order among sibling collections.
	DefaultTemplateID string     // Optional template applied to new cards.
	IsDefault         bool       // Marks the auto-seeded collection.
	CreatedAt         time.Time  // Timestamp of creation.
	UpdatedAt         time.Time  // Timestamp of last modification.
	Deleted           bool       // Tombstone flag.
	DeletedAt         *time.Time // Tombstone timestamp; nil while live.
}

// Defaults for the collection seeded when an organization has none.
const (
	DefaultCollectionName  = "My Collection"
	DefaultCollectionColor = "#64748b"
)
