package types

import "time"

// Group is a named ordered bucket of cards within exactly one collection.
// Every collection retains at least one group; a default group is created
// whenever a collection has zero groups, and the application layer rejects
// deleting the last one. Groups hard-delete: there is no tombstone.
type Group struct {
	ID           string    // UUID v7, generated on creation.
	CollectionID string    // Owning collection.
	Name         string    // Display name.
	Order        int       // Presentation order among sibling groups.
	CreatedAt    time.Time // Timestamp of creation.
	UpdatedAt    time.Time // Timestamp of last modification.
}

// DefaultGroupName names auto-created groups and is the fallback when a
// rename would leave a group with an empty name.
const DefaultGroupName = "group"
