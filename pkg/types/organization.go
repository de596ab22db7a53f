package types

import "time"

// Organization is the top-level namespace grouping collections. A default
// organization is seeded when the store is first attached. Organizations are
// never hard-removed while referenced; deletion sets a tombstone.
type Organization struct {
	ID        string     // UUID v7, generated on creation.
	Name      string     // Display name.
	Order     int        // Presentation order among organizations.
	CreatedAt time.Time  // Timestamp of creation.
	UpdatedAt time.Time  // Timestamp of last modification.
	Deleted   bool       // Tombstone flag.
	DeletedAt *time.Time // Tombstone timestamp; nil while live.
}

// DefaultOrganizationName is used for the organization seeded on first attach.
const DefaultOrganizationName = "My Workspace"
