// Package dragdrop implements the drag-session mutation protocol: an
// explicit state machine over one drag gesture, from pick-up through
// insertion-point computation to a single committed store mutation.
// Sessions are passed explicitly rather than held in package state, so
// independent sessions (and parallel tests) cannot leak into each other.
package dragdrop

import "github.com/linktrove/linktrove/pkg/types"

// SourceKind tags what is being dragged.
type SourceKind string

const (
	// SourceExistingCard drags a card that already exists in the store.
	SourceExistingCard SourceKind = "existing-card"

	// SourceNewTab drags an open browser tab not yet saved as a card.
	SourceNewTab SourceKind = "new-tab"

	// SourceNativeTab drags a native browser tab between windows; the
	// browser API is the source of truth for its final position.
	SourceNativeTab SourceKind = "native-browser-tab"

	// SourceNativeTabGroup drags a native browser tab group.
	SourceNativeTabGroup SourceKind = "native-tab-group"
)

// Source identifies the dragged thing. Exactly one payload field is
// meaningful per kind.
type Source struct {
	Kind       SourceKind
	CardID     string            // SourceExistingCard
	Tab        types.TabPayload  // SourceNewTab
	TabID      int               // SourceNativeTab
	TabGroupID int               // SourceNativeTabGroup
}

// Position is the computed insertion point relative to the drop target.
type Position string

const (
	// PositionBefore inserts before the hovered card.
	PositionBefore Position = "before"

	// PositionAfter inserts after the hovered card (end of list when the
	// hovered card is last).
	PositionAfter Position = "after"

	// PositionEndOfGroup appends at the end of the target group (drop on
	// a group header, group body, or window background).
	PositionEndOfGroup Position = "end-of-group"
)

// Target is a candidate drop computed from pointer geometry.
type Target struct {
	GroupID  string   // target group
	CardID   string   // hovered card, empty for group-level drops
	Position Position // computed insertion point
	BeforeID string   // resolved "insert before this card", empty = append
}
