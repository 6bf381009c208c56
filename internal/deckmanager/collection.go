package deckmanager

import (
	"context"
	"fmt"
	"log"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/collection"
	"github.com/ramonehamilton/deckkeeper/internal/events"
)

// Ownership is tracked but not enforced when building decks.

// CollectionEntries lists owned cards sorted by title.
func (m *Manager) CollectionEntries() []collection.Entry {
	m.mu.Lock()
	defer m.unlock()
	return m.collection.Entries()
}

// OwnedCount returns the copies of card the player owns.
func (m *Manager) OwnedCount(card *cards.Card) int {
	m.mu.Lock()
	defer m.unlock()
	return m.collection.GetCount(card)
}

// SetOwnedCount sets the owned copies of card; n <= 0 removes it.
func (m *Manager) SetOwnedCount(card *cards.Card, n int) error {
	m.mu.Lock()
	defer m.unlock()

	if card == nil {
		log.Printf("[DeckManager] Cannot set owned count: %v", ErrNilCard)
		return ErrNilCard
	}
	m.collection.SetCount(card, n)
	m.collectionChanged(card)
	return nil
}

// GrantCards adds delta copies of card to the collection.
func (m *Manager) GrantCards(card *cards.Card, delta int) error {
	m.mu.Lock()
	defer m.unlock()

	if card == nil {
		log.Printf("[DeckManager] Cannot grant cards: %v", ErrNilCard)
		return ErrNilCard
	}
	if delta <= 0 {
		return fmt.Errorf("grant amount must be positive, got %d", delta)
	}
	m.collection.AddCount(card, delta)
	m.collectionChanged(card)
	return nil
}

// SpendCards removes delta copies of card, failing when fewer are owned.
func (m *Manager) SpendCards(card *cards.Card, delta int) error {
	m.mu.Lock()
	defer m.unlock()

	if card == nil {
		log.Printf("[DeckManager] Cannot spend cards: %v", ErrNilCard)
		return ErrNilCard
	}
	if delta <= 0 {
		return fmt.Errorf("spend amount must be positive, got %d", delta)
	}
	if !m.collection.RemoveCount(card, delta) {
		log.Printf("[DeckManager] Cannot spend %d of %s: own %d", delta, card, m.collection.GetCount(card))
		return fmt.Errorf("%w: own %d of %s, need %d", ErrNotEnoughCopies, m.collection.GetCount(card), card.Title, delta)
	}
	m.collectionChanged(card)
	return nil
}

// ResetCollection replaces the collection with copiesEach of every catalog card.
func (m *Manager) ResetCollection(copiesEach int) {
	m.mu.Lock()
	defer m.unlock()

	m.collection.InitializeWithAll(m.catalog.LoadAll(), copiesEach)
	m.emit(context.Background(), events.TypeCollectionChanged, events.CollectionChangedEvent{Count: m.collection.Total()})
}

func (m *Manager) collectionChanged(card *cards.Card) {
	count := m.collection.GetCount(card)
	m.debugf("Collection now holds %d of %s", count, card)
	m.emit(context.Background(), events.TypeCollectionChanged, events.CollectionChangedEvent{CardID: card.ID, Count: count})
}
