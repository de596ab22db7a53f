// Package linktrove provides the application service over the storage
// backend: it enforces the cross-entity invariants the table layer does
// not (last-group and last-collection protection), keeps order lists and
// card rows consistent across mutations, and exposes the operations the
// CLI and drag protocol drive.
package linktrove

import (
	"errors"
	"fmt"

	"github.com/linktrove/linktrove/internal/export"
	"github.com/linktrove/linktrove/internal/logger"
	"github.com/linktrove/linktrove/internal/order"
	"github.com/linktrove/linktrove/pkg/types"
)

// Version is the LinkTrove release version.
const Version = "0.1.0"

// Store is the backend surface the App drives: the typed tables plus
// whole-dataset export/import.
type Store interface {
	types.Store

	// ExportDataset reads every live entity into a backup document.
	ExportDataset() (*export.Document, error)

	// ImportDataset replaces the dataset wholesale with the document.
	ImportDataset(doc *export.Document) error
}

// App is the application service. All mutations that touch both card rows
// and order lists flow through here so the two never drift apart.
type App struct {
	store    Store
	orders   *order.Engine
	log      logger.Logger
	onChange func()
}

// New constructs an App over an attached store. A nil log is replaced with
// a no-op logger.
func New(store Store, log logger.Logger) *App {
	if log == nil {
		log = logger.Nop()
	}
	return &App{
		store:  store,
		orders: order.NewEngine(store.Meta()),
		log:    log,
	}
}

// Store returns the underlying store.
func (a *App) Store() Store { return a.store }

// SetOnChange registers a hook invoked after every successful dataset
// mutation. The sync reconciler's NotifyChange is the intended callee, so
// edits feed its debounced push. Imports do not fire it; a pull must not
// trigger a push of its own content.
func (a *App) SetOnChange(fn func()) { a.onChange = fn }

func (a *App) changed() {
	if a.onChange != nil {
		a.onChange()
	}
}

// Orders returns the ordering engine.
func (a *App) Orders() *order.Engine { return a.orders }

// Close detaches the underlying store.
func (a *App) Close() error { return a.store.Detach() }

// DefaultOrganization returns the first organization, which the backend
// seeds on first attach.
func (a *App) DefaultOrganization() (*types.Organization, error) {
	orgs, err := a.store.Organizations().List()
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, types.ErrNotFound
	}
	return orgs[0], nil
}

// CreateCollection creates a collection and its initial default group, so
// the collection never exists with zero groups.
func (a *App) CreateCollection(organizationID, name, color string) (*types.Collection, error) {
	col, err := a.store.Collections().Create(organizationID, name, color)
	if err != nil {
		return nil, err
	}
	if _, err := a.store.Groups().Create(col.ID, types.DefaultGroupName); err != nil {
		return nil, fmt.Errorf("creating default group: %w", err)
	}
	a.changed()
	return col, nil
}

// DeleteCollection soft-deletes a collection after verifying it is not the
// organization's last one. Order scopes of its groups are dropped, since
// the cascade hard-deletes the groups.
func (a *App) DeleteCollection(id string) error {
	col, err := a.store.Collections().Get(id)
	if err != nil {
		return err
	}
	n, err := a.store.Collections().Count(col.OrganizationID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return types.ErrLastCollection
	}

	groups, err := a.store.Groups().List(id)
	if err != nil {
		return err
	}
	if err := a.store.Collections().SoftDelete(id); err != nil {
		return err
	}
	for _, g := range groups {
		if err := a.orders.Drop(order.GroupScope(g.ID)); err != nil {
			return err
		}
	}

	// A selection pointing at the deleted collection would otherwise
	// survive as a dangling ID.
	selKey := types.MetaKeySelectedCollectionPrefix + col.OrganizationID
	var selected string
	if err := a.store.Meta().Get(selKey, &selected); err == nil && selected == id {
		if err := a.store.Meta().Delete(selKey); err != nil {
			return err
		}
	} else if err != nil && !errors.Is(err, types.ErrNotFound) {
		return err
	}

	a.log.Info("collection deleted",
		logger.String("collection", id),
		logger.Int("groups", len(groups)))
	a.changed()
	return nil
}

// DefaultGroup returns the first group of a collection, creating one when
// the collection has none.
func (a *App) DefaultGroup(collectionID string) (*types.Group, error) {
	groups, err := a.store.Groups().List(collectionID)
	if err != nil {
		return nil, err
	}
	if len(groups) > 0 {
		return groups[0], nil
	}
	return a.store.Groups().Create(collectionID, types.DefaultGroupName)
}

// DeleteGroup removes a group after verifying it is not the collection's
// last one: deleting the last group is rejected with ErrLastGroup before
// any mutation. With reassignment, the member cards' order entries move to
// the end of the target group's list, preserving their relative order.
func (a *App) DeleteGroup(id string, opts types.GroupDeleteOptions) error {
	grp, err := a.store.Groups().Get(id)
	if err != nil {
		return err
	}
	n, err := a.store.Groups().Count(grp.CollectionID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return types.ErrLastGroup
	}

	scope := order.GroupScope(id)
	var moved []*types.Card
	if opts.Mode == types.GroupDeleteReassign {
		cards, err := a.CardsInGroup(id)
		if err != nil {
			return err
		}
		moved = cards
	}

	if err := a.store.Groups().Delete(id, opts); err != nil {
		return err
	}

	if opts.Mode == types.GroupDeleteReassign {
		target := order.GroupScope(opts.ReassignTo)
		for _, c := range moved {
			if _, err := a.orders.Insert(target, c.ID, ""); err != nil {
				return err
			}
		}
	}
	if err := a.orders.Drop(scope); err != nil {
		return err
	}
	a.changed()
	return nil
}

// SaveTab creates a card from a browser tab at the front of the group:
// the newest card leads both the natural order and the explicit list.
func (a *App) SaveTab(groupID string, tab types.TabPayload) (*types.Card, error) {
	return a.saveTab(groupID, tab, "", true)
}

// SaveTabBefore creates a card from a browser tab positioned before
// beforeID in the group; an empty beforeID appends at the end.
func (a *App) SaveTabBefore(groupID string, tab types.TabPayload, beforeID string) (*types.Card, error) {
	return a.saveTab(groupID, tab, beforeID, false)
}

func (a *App) saveTab(groupID string, tab types.TabPayload, beforeID string, front bool) (*types.Card, error) {
	grp, err := a.store.Groups().Get(groupID)
	if err != nil {
		return nil, err
	}

	card, err := a.store.Cards().Create(&types.Card{
		Title:        tab.Title,
		URL:          tab.URL,
		Favicon:      tab.Favicon,
		CollectionID: grp.CollectionID,
		GroupID:      grp.ID,
	})
	if err != nil {
		return nil, err
	}

	scope := order.GroupScope(grp.ID)
	if front {
		list, err := a.orders.List(scope)
		if err != nil {
			return nil, err
		}
		if len(list) > 0 {
			beforeID = list[0]
		}
	}
	if _, err := a.orders.Insert(scope, card.ID, beforeID); err != nil {
		return nil, err
	}
	a.changed()
	return card, nil
}

// UpdateCard applies a partial patch to a card. When the patch moves the
// card between groups, the order lists of both groups are updated.
func (a *App) UpdateCard(id string, patch types.CardPatch) (*types.Card, error) {
	before, err := a.store.Cards().Get(id)
	if err != nil {
		return nil, err
	}
	card, err := a.store.Cards().Update(id, patch)
	if err != nil {
		return nil, err
	}
	if card.GroupID != before.GroupID {
		if err := a.orders.Remove(order.GroupScope(before.GroupID), id); err != nil {
			return nil, err
		}
		if _, err := a.orders.Insert(order.GroupScope(card.GroupID), id, ""); err != nil {
			return nil, err
		}
	}
	a.changed()
	return card, nil
}

// MoveCard moves a card to the target group positioned before beforeID
// (empty beforeID appends at the end). This is the single combined
// operation the drag protocol commits: category, group, and ordering
// change in one pass.
func (a *App) MoveCard(id, groupID, beforeID string) error {
	card, err := a.store.Cards().Get(id)
	if err != nil {
		return err
	}

	if card.GroupID != groupID {
		gid := groupID
		if _, err := a.store.Cards().Update(id, types.CardPatch{GroupID: &gid}); err != nil {
			return err
		}
		if err := a.orders.Remove(order.GroupScope(card.GroupID), id); err != nil {
			return err
		}
	}
	if _, err := a.orders.Insert(order.GroupScope(groupID), id, beforeID); err != nil {
		return err
	}
	a.changed()
	return nil
}

// ReorderCard moves a card immediately before another card within its own
// group. Unknown IDs are a silent no-op.
func (a *App) ReorderCard(id, beforeID string) ([]string, error) {
	card, err := a.store.Cards().Get(id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil // deleted mid-drag
		}
		return nil, err
	}
	list, err := a.orders.Reorder(order.GroupScope(card.GroupID), id, beforeID)
	if err != nil {
		return nil, err
	}
	a.changed()
	return list, nil
}

// MoveCardToEnd moves a card to the end of its group's list.
func (a *App) MoveCardToEnd(id string) ([]string, error) {
	card, err := a.store.Cards().Get(id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	list, err := a.orders.MoveToEnd(order.GroupScope(card.GroupID), id)
	if err != nil {
		return nil, err
	}
	a.changed()
	return list, nil
}

// DeleteCard hard-deletes a card and removes it from its group's order
// list, keeping the completeness invariant: no dangling IDs.
func (a *App) DeleteCard(id string) error {
	card, err := a.store.Cards().Get(id)
	if err != nil {
		return err
	}
	if err := a.store.Cards().Delete(id); err != nil {
		return err
	}
	if err := a.orders.Remove(order.GroupScope(card.GroupID), id); err != nil {
		return err
	}
	a.changed()
	return nil
}

// DeleteCards hard-deletes a batch of cards, cleaning each group's order
// list. Unknown IDs are skipped.
func (a *App) DeleteCards(ids []string) error {
	byScope := make(map[string][]string)
	for _, id := range ids {
		card, err := a.store.Cards().Get(id)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return err
		}
		scope := order.GroupScope(card.GroupID)
		byScope[scope] = append(byScope[scope], id)
	}
	if err := a.store.Cards().DeleteMany(ids); err != nil {
		return err
	}
	for scope, scoped := range byScope {
		if err := a.orders.Remove(scope, scoped...); err != nil {
			return err
		}
	}
	if len(byScope) > 0 {
		a.changed()
	}
	return nil
}

// CardsInGroup returns the group's live cards in display order: the
// explicit order list first, cards without an entry after it in natural
// order.
func (a *App) CardsInGroup(groupID string) ([]*types.Card, error) {
	cards, err := a.store.Cards().ListByGroup(groupID)
	if err != nil {
		return nil, err
	}
	return a.orders.ResolveCards(order.GroupScope(groupID), cards)
}

// SelectCollection persists the selected collection for an organization.
func (a *App) SelectCollection(organizationID, collectionID string) error {
	return a.store.Meta().Set(types.MetaKeySelectedCollectionPrefix+organizationID, collectionID)
}

// SelectedCollection returns the persisted selection, or the first
// collection when none is recorded. A persisted ID that no longer names a
// live collection (deleted, or replaced by an import) falls back the same
// way.
func (a *App) SelectedCollection(organizationID string) (string, error) {
	var id string
	err := a.store.Meta().Get(types.MetaKeySelectedCollectionPrefix+organizationID, &id)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return "", err
	}
	if err == nil && id != "" {
		if _, err := a.store.Collections().Get(id); err == nil {
			return id, nil
		} else if !errors.Is(err, types.ErrNotFound) {
			return "", err
		}
	}
	cols, err := a.store.Collections().List(organizationID)
	if err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", types.ErrNotFound
	}
	return cols[0].ID, nil
}

// Export builds the whole-dataset backup document.
func (a *App) Export() (*export.Document, error) {
	return a.store.ExportDataset()
}

// Import replaces the dataset wholesale with the document's contents.
func (a *App) Import(doc *export.Document) error {
	return a.store.ImportDataset(doc)
}

// Checksum returns the content checksum of the current dataset.
func (a *App) Checksum() (string, error) {
	doc, err := a.store.ExportDataset()
	if err != nil {
		return "", err
	}
	return export.Checksum(doc)
}
