package dragdrop

import (
	"context"
	"errors"
	"sync"

	"github.com/linktrove/linktrove/internal/logger"
	"github.com/linktrove/linktrove/pkg/types"
)

// Session errors.
var (
	ErrNoDrag         = errors.New("no drag in progress")
	ErrDragInProgress = errors.New("a drag is already in progress")
	ErrNoTarget       = errors.New("no drop target computed")
)

// State of a drag session.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateTargeting
)

// Mutator is the store surface a committed drop mutates. *linktrove.App
// satisfies it.
type Mutator interface {
	// SaveTabBefore creates a card from a tab payload positioned before
	// beforeID in the group (empty beforeID appends).
	SaveTabBefore(groupID string, tab types.TabPayload, beforeID string) (*types.Card, error)

	// MoveCard moves an existing card to the group positioned before
	// beforeID in one combined operation.
	MoveCard(id, groupID, beforeID string) error

	// CardsInGroup returns the group's cards in display order.
	CardsInGroup(groupID string) ([]*types.Card, error)
}

// TabMover issues native browser tab movements. The browser API is the
// source of truth for native tab positions, not this engine; after a
// native commit the session schedules a refresh to reconcile.
type TabMover interface {
	MoveTab(ctx context.Context, tabID, index int) error
	MoveTabGroup(ctx context.Context, tabGroupID, index int) error
}

// Session is one drag gesture's state machine:
//
//	idle -> dragging -> targeting -> committed/cancelled -> idle
//
// The mutex serializes commits: a second drop on the same session blocks
// until the first finishes and then fails with ErrNoDrag instead of
// interleaving mutations.
type Session struct {
	mu      sync.Mutex
	state   State
	source  Source
	target  *Target
	mutator Mutator
	tabs    TabMover
	refresh func()
	log     logger.Logger
}

// NewSession creates an idle drag session. tabs may be nil when native
// drags are not expected; refresh may be nil. A nil log is replaced with a
// no-op logger.
func NewSession(m Mutator, tabs TabMover, refresh func(), log logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{mutator: m, tabs: tabs, refresh: refresh, log: log}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin starts a drag for the given source.
func (s *Session) Begin(src Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrDragInProgress
	}
	s.state = StateDragging
	s.source = src
	s.target = nil
	return nil
}

// TargetCard records a candidate drop on a card in a row-oriented list.
// The pointer's position relative to the card's vertical midpoint selects
// before or after.
func (s *Session) TargetCard(groupID, cardID string, card Rect, p Point) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return "", ErrNoDrag
	}
	pos := RowPosition(card, p)
	s.target = &Target{GroupID: groupID, CardID: cardID, Position: pos}
	s.state = StateTargeting
	return pos, nil
}

// TargetGrid records a candidate drop on a grid-oriented list using the
// nearest-cell heuristic. cells must be in display order.
func (s *Session) TargetGrid(groupID string, cells []Cell, p Point) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return "", ErrNoDrag
	}
	i := GridInsertion(cells, p)
	t := &Target{GroupID: groupID, Position: PositionEndOfGroup}
	if i < len(cells) {
		t.CardID = cells[i].CardID
		t.Position = PositionBefore
		t.BeforeID = cells[i].CardID
	}
	s.target = t
	s.state = StateTargeting
	return t.Position, nil
}

// TargetGroup records a candidate drop on a group header or body: append
// at the end of that group.
func (s *Session) TargetGroup(groupID string) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return "", ErrNoDrag
	}
	s.target = &Target{GroupID: groupID, Position: PositionEndOfGroup}
	s.state = StateTargeting
	return PositionEndOfGroup, nil
}

// Commit performs exactly one mutation for the current source and target,
// then resets to idle. Self-drops succeed without mutating anything. The
// mutation runs under the session mutex, so rapid double-drops serialize:
// the loser observes an idle session and gets ErrNoDrag.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return ErrNoDrag
	}
	if s.state != StateTargeting || s.target == nil {
		s.reset()
		return ErrNoTarget
	}

	src, t := s.source, s.target
	defer s.reset()

	// Self-drop is a no-op.
	if src.Kind == SourceExistingCard && src.CardID == t.CardID {
		return nil
	}

	beforeID, err := s.resolveBeforeID(t)
	if err != nil {
		return err
	}

	switch src.Kind {
	case SourceNewTab:
		card, err := s.mutator.SaveTabBefore(t.GroupID, src.Tab, beforeID)
		if err != nil {
			return err
		}
		s.log.Debug("drop created card",
			logger.String("card", card.ID),
			logger.String("group", t.GroupID))
		return nil

	case SourceExistingCard:
		if err := s.mutator.MoveCard(src.CardID, t.GroupID, beforeID); err != nil {
			return err
		}
		s.log.Debug("drop moved card",
			logger.String("card", src.CardID),
			logger.String("group", t.GroupID))
		return nil

	case SourceNativeTab, SourceNativeTabGroup:
		if s.tabs == nil {
			return ErrNoTarget
		}
		index, err := s.nativeIndex(t, beforeID)
		if err != nil {
			return err
		}
		if src.Kind == SourceNativeTab {
			err = s.tabs.MoveTab(ctx, src.TabID, index)
		} else {
			err = s.tabs.MoveTabGroup(ctx, src.TabGroupID, index)
		}
		if err != nil {
			return err
		}
		// The browser owns native positions; reconcile with a refresh.
		if s.refresh != nil {
			s.refresh()
		}
		return nil
	}
	return ErrNoTarget
}

// Cancel aborts the in-flight gesture and clears all transient state. It
// is the authoritative cleanup for a global dragend with no pending
// commit: leaving the window does not reliably fire element-level leave
// events, so per-element cleanup cannot be trusted. Safe to call from any
// state.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// reset returns to idle. Caller must hold s.mu.
func (s *Session) reset() {
	s.state = StateIdle
	s.source = Source{}
	s.target = nil
}

// resolveBeforeID turns the target's position into the concrete "insert
// before this card" argument: before the hovered card directly, after it
// via the next card in display order, end-of-group as empty (append).
func (s *Session) resolveBeforeID(t *Target) (string, error) {
	switch t.Position {
	case PositionBefore:
		if t.BeforeID != "" {
			return t.BeforeID, nil
		}
		return t.CardID, nil
	case PositionAfter:
		cards, err := s.mutator.CardsInGroup(t.GroupID)
		if err != nil {
			return "", err
		}
		for i, c := range cards {
			if c.ID == t.CardID && i+1 < len(cards) {
				return cards[i+1].ID, nil
			}
		}
		return "", nil // hovered card is last: append
	default:
		return "", nil
	}
}

// nativeIndex maps the target onto a browser tab index: the display
// position of beforeID, or one past the last card for appends.
func (s *Session) nativeIndex(t *Target, beforeID string) (int, error) {
	cards, err := s.mutator.CardsInGroup(t.GroupID)
	if err != nil {
		return 0, err
	}
	if beforeID == "" {
		return len(cards), nil
	}
	for i, c := range cards {
		if c.ID == beforeID {
			return i, nil
		}
	}
	return len(cards), nil
}
