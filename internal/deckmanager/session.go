package deckmanager

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/deck"
	"github.com/ramonehamilton/deckkeeper/internal/events"
)

// session is the single editing slot: a deep copy of one deck plus the name
// it had when editing started.
type session struct {
	draft        *deck.Deck
	originalName string
}

// SessionView is a read-only copy of the editing session.
type SessionView struct {
	Draft        *deck.Deck
	OriginalName string
}

// StartEditingSession copies the deck into the editing slot. An uncommitted
// session is replaced; the replacement is logged and reported in the event.
func (m *Manager) StartEditingSession(id string) error {
	m.mu.Lock()
	defer m.unlock()

	d := m.decks.Get(id)
	if d == nil {
		log.Printf("[DeckManager] Cannot edit deck %s: not found", id)
		return fmt.Errorf("%w: %s", ErrDeckNotFound, id)
	}

	replaced := ""
	if m.session != nil {
		replaced = m.session.draft.ID
		log.Printf("[DeckManager] WARNING: discarding uncommitted edits to deck %q to edit %q",
			m.session.originalName, d.Name)
	}

	m.session = &session{draft: d.Clone(), originalName: d.Name}
	log.Printf("[DeckManager] Editing deck %q (%s)", d.Name, d.ID)

	m.emit(context.Background(), events.TypeSessionStarted, events.SessionEvent{DeckID: id, Replaced: replaced})
	return nil
}

// Session returns a copy of the active editing session.
func (m *Manager) Session() (SessionView, bool) {
	m.mu.Lock()
	defer m.unlock()

	if m.session == nil {
		return SessionView{}, false
	}
	return SessionView{Draft: m.session.draft.Clone(), OriginalName: m.session.originalName}, true
}

// CommitEditingSession writes the draft back onto the live deck under
// newName, clears the session and persists. When only the save fails the
// commit stands and the error wraps ErrNotPersisted.
func (m *Manager) CommitEditingSession(ctx context.Context, newName string) error {
	m.mu.Lock()
	defer m.unlock()

	if m.session == nil {
		log.Printf("[DeckManager] Cannot commit: %v", ErrNoSession)
		return ErrNoSession
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		log.Printf("[DeckManager] Cannot commit: %v", ErrEmptyName)
		return ErrEmptyName
	}

	draft := m.session.draft
	if newName != m.session.originalName && m.decks.NameTaken(newName, draft.ID) {
		log.Printf("[DeckManager] Cannot commit: name %q is already taken", newName)
		return fmt.Errorf("%w: %q", ErrNameTaken, newName)
	}

	live := m.decks.Get(draft.ID)
	if live == nil {
		log.Printf("[DeckManager] Cannot commit: deck %s was deleted during editing", draft.ID)
		return fmt.Errorf("%w: %s", ErrDeckNotFound, draft.ID)
	}

	committed := draft.Clone()
	live.MainDeckCards = committed.MainDeckCards
	live.StageDeckCards = committed.StageDeckCards
	live.Name = newName
	m.session = nil

	log.Printf("[DeckManager] Saved deck %q (%s): %d main, %d stage",
		live.Name, live.ID, live.Total(deck.PartitionMain), live.Total(deck.PartitionStage))

	saveErr := m.saveLocked(ctx)
	m.emit(ctx, events.TypeDeckSaved, events.DeckSavedEvent{
		DeckID:     live.ID,
		Name:       live.Name,
		MainCount:  live.Total(deck.PartitionMain),
		StageCount: live.Total(deck.PartitionStage),
		Persisted:  saveErr == nil,
	})
	if saveErr != nil {
		return fmt.Errorf("%w: %w", ErrNotPersisted, saveErr)
	}
	return nil
}

// DiscardEditingSession drops the draft without touching the live deck.
func (m *Manager) DiscardEditingSession() {
	m.mu.Lock()
	defer m.unlock()

	if m.session == nil {
		log.Printf("[DeckManager] Nothing to discard: %v", ErrNoSession)
		return
	}
	id := m.session.draft.ID
	m.session = nil
	log.Printf("[DeckManager] Discarded edits to deck %s", id)

	m.emit(context.Background(), events.TypeSessionDiscarded, events.SessionEvent{DeckID: id})
}

// CanAddCard reports whether one more copy of card fits the chosen partition
// of the editing session. It is false without a session or card.
func (m *Manager) CanAddCard(card *cards.Card, toStage bool) bool {
	m.mu.Lock()
	defer m.unlock()

	p := deck.PartitionMain
	if toStage {
		p = deck.PartitionStage
	}
	return m.checkAdd(card, p) == nil
}

// checkAdd tests the partition rule, the partition capacity and the copy
// limit. Capacity and copy limit are independent; either one blocks.
func (m *Manager) checkAdd(card *cards.Card, p deck.Partition) error {
	if card == nil {
		return ErrNilCard
	}
	if m.session == nil {
		return ErrNoSession
	}
	if deck.PartitionFor(card) != p {
		return fmt.Errorf("%w: %s is a %s card and cannot go in the %s deck", ErrRuleViolation, card.Title, card.Type, p)
	}

	draft := m.session.draft
	if total := draft.Total(p); total >= p.MaxSize() {
		return fmt.Errorf("%w: %s deck is full (%d/%d)", ErrRuleViolation, p, total, p.MaxSize())
	}
	if n := draft.Cards(p)[card]; n >= deck.MaxCopiesPerCard {
		return fmt.Errorf("%w: already %d copies of %s (max %d)", ErrRuleViolation, n, card.Title, deck.MaxCopiesPerCard)
	}
	return nil
}

// AddCardToSession adds one copy of card to the partition its type belongs to.
func (m *Manager) AddCardToSession(card *cards.Card) error {
	m.mu.Lock()
	defer m.unlock()

	if card == nil {
		log.Printf("[DeckManager] Cannot add card: %v", ErrNilCard)
		return ErrNilCard
	}

	p := deck.PartitionFor(card)
	if err := m.checkAdd(card, p); err != nil {
		log.Printf("[DeckManager] Cannot add %s: %v", card, err)
		return err
	}

	target := m.session.draft.Cards(p)
	target[card]++
	m.debugf("Added %s to %s deck (%d copies)", card, p, target[card])
	return nil
}

// RemoveCardFromSession removes one copy of card, deleting the entry at zero.
func (m *Manager) RemoveCardFromSession(card *cards.Card) error {
	m.mu.Lock()
	defer m.unlock()

	if card == nil {
		log.Printf("[DeckManager] Cannot remove card: %v", ErrNilCard)
		return ErrNilCard
	}
	if m.session == nil {
		log.Printf("[DeckManager] Cannot remove %s: %v", card, ErrNoSession)
		return ErrNoSession
	}

	p := deck.PartitionFor(card)
	target := m.session.draft.Cards(p)
	if target[card] <= 0 {
		log.Printf("[DeckManager] Cannot remove %s: not in the %s deck", card, p)
		return fmt.Errorf("%w: %s", ErrCardNotInSession, card.Title)
	}

	target[card]--
	if target[card] == 0 {
		delete(target, card)
	}
	m.debugf("Removed %s from %s deck (%d copies left)", card, p, target[card])
	return nil
}

// GetSessionCardCount returns the copies of card in the editing session.
func (m *Manager) GetSessionCardCount(card *cards.Card) int {
	m.mu.Lock()
	defer m.unlock()

	if m.session == nil {
		return 0
	}
	return m.session.draft.Count(card)
}

// GetSessionTotalCount returns the size of the main or stage partition of
// the editing session.
func (m *Manager) GetSessionTotalCount(mainDeck bool) int {
	m.mu.Lock()
	defer m.unlock()

	if m.session == nil {
		return 0
	}
	if mainDeck {
		return m.session.draft.Total(deck.PartitionMain)
	}
	return m.session.draft.Total(deck.PartitionStage)
}
