// Package order maintains explicit, persisted orderings over card IDs.
// The persisted order list is the single source of truth for display
// sequence; the store's natural iteration order is only a tiebreak for
// IDs that have no explicit entry yet.
package order

// Reorder removes fromID from its current position and re-inserts it
// immediately before toID's position as computed after the removal. When
// fromID originally precedes toID, toID's effective index has already
// shifted down by one at insertion time; insert-before-original-index
// would silently misplace forward moves.
//
// Unknown fromID or toID, and fromID == toID, leave the list unchanged:
// mid-drag deletions make not-found reorders routine, not exceptional.
// The input slice is never mutated.
func Reorder(list []string, fromID, toID string) []string {
	if fromID == toID {
		return clone(list)
	}
	from := indexOf(list, fromID)
	if from < 0 || indexOf(list, toID) < 0 {
		return clone(list)
	}

	out := make([]string, 0, len(list))
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)

	to := indexOf(out, toID)
	out = append(out, "")
	copy(out[to+1:], out[to:])
	out[to] = fromID
	return out
}

// MoveToEnd removes id and appends it. Unknown id is a no-op.
// The input slice is never mutated.
func MoveToEnd(list []string, id string) []string {
	i := indexOf(list, id)
	if i < 0 {
		return clone(list)
	}
	out := make([]string, 0, len(list))
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return append(out, id)
}

// Resolve produces the final display sequence for the given record IDs:
// IDs with an explicit order entry first, by list position, then any
// record absent from the order list, preserving the records' own
// (natural) order. Pure: neither input is mutated.
func Resolve(orderList, records []string) []string {
	present := make(map[string]bool, len(records))
	for _, id := range records {
		present[id] = true
	}

	out := make([]string, 0, len(records))
	placed := make(map[string]bool, len(records))
	for _, id := range orderList {
		if present[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	for _, id := range records {
		if !placed[id] {
			out = append(out, id)
		}
	}
	return out
}

// Remove returns list without the given IDs. IDs not present are ignored.
// The input slice is never mutated.
func Remove(list []string, ids ...string) []string {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := make([]string, 0, len(list))
	for _, id := range list {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}

func clone(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
