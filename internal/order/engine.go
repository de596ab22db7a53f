package order

import (
	"errors"

	"github.com/linktrove/linktrove/pkg/types"
)

// GlobalScope is the legacy order scope covering all cards, kept for
// datasets created before per-group ordering existed.
const GlobalScope = types.MetaKeyWebpageOrder

// GroupScope returns the order scope key for a single group. Scopes are
// independent: mutations in one group's scope never touch another's.
func GroupScope(groupID string) string {
	return types.MetaKeyGroupOrderPrefix + groupID
}

// Engine persists per-scope order lists through the key-value meta table.
type Engine struct {
	meta types.MetaTable
}

// NewEngine creates an ordering engine over the given meta table.
func NewEngine(meta types.MetaTable) *Engine {
	return &Engine{meta: meta}
}

// List returns the persisted order list for a scope. A scope with no entry
// yields an empty list.
func (e *Engine) List(scope string) ([]string, error) {
	var list []string
	if err := e.meta.Get(scope, &list); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

// Reorder moves fromID immediately before toID within the scope and
// persists the result. Unknown IDs and self-moves are no-ops returning the
// unchanged list.
func (e *Engine) Reorder(scope, fromID, toID string) ([]string, error) {
	list, err := e.List(scope)
	if err != nil {
		return nil, err
	}
	next := Reorder(list, fromID, toID)
	if err := e.meta.Set(scope, next); err != nil {
		return nil, err
	}
	return next, nil
}

// MoveToEnd moves id to the end of the scope's list and persists the
// result. Unknown id is a no-op returning the unchanged list.
func (e *Engine) MoveToEnd(scope, id string) ([]string, error) {
	list, err := e.List(scope)
	if err != nil {
		return nil, err
	}
	next := MoveToEnd(list, id)
	if err := e.meta.Set(scope, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Insert places id before beforeID in the scope's list, appending when
// beforeID is empty or not present, and removing any previous occurrence
// of id first. This is the membership-ensuring entry point used when a
// card arrives in a scope it was not ordered in yet.
func (e *Engine) Insert(scope, id, beforeID string) ([]string, error) {
	list, err := e.List(scope)
	if err != nil {
		return nil, err
	}

	next := Remove(list, id)
	at := len(next)
	if beforeID != "" {
		if i := indexOf(next, beforeID); i >= 0 {
			at = i
		}
	}
	next = append(next, "")
	copy(next[at+1:], next[at:])
	next[at] = id

	if err := e.meta.Set(scope, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Remove deletes the given IDs from the scope's list and persists the
// result. Callers deleting cards are responsible for routing through here
// so order lists never hold dangling IDs.
func (e *Engine) Remove(scope string, ids ...string) error {
	list, err := e.List(scope)
	if err != nil {
		return err
	}
	return e.meta.Set(scope, Remove(list, ids...))
}

// Drop discards a scope's order list entirely (group deleted).
func (e *Engine) Drop(scope string) error {
	return e.meta.Delete(scope)
}

// ResolveCards orders records by the scope's persisted list: explicit
// entries first by position, then records without an entry in their given
// (natural) order. Neither input is mutated.
func (e *Engine) ResolveCards(scope string, records []*types.Card) ([]*types.Card, error) {
	list, err := e.List(scope)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(records))
	byID := make(map[string]*types.Card, len(records))
	for i, c := range records {
		ids[i] = c.ID
		byID[c.ID] = c
	}

	resolved := Resolve(list, ids)
	out := make([]*types.Card, 0, len(resolved))
	for _, id := range resolved {
		out = append(out, byID[id])
	}
	return out, nil
}
