package deckmanager

import (
	"context"
	"fmt"
	"log"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/deck"
	"github.com/ramonehamilton/deckkeeper/internal/events"
)

// SetActiveGameplayDeck snapshots a deck for a match. Draws consume the
// snapshot, never the saved deck.
func (m *Manager) SetActiveGameplayDeck(id string) error {
	m.mu.Lock()
	defer m.unlock()

	d := m.decks.Get(id)
	if d == nil {
		log.Printf("[DeckManager] Cannot start gameplay with deck %s: not found", id)
		return fmt.Errorf("%w: %s", ErrDeckNotFound, id)
	}

	m.gameplay = d.Clone()
	remaining := m.gameplay.Total(deck.PartitionMain)
	log.Printf("[DeckManager] Gameplay deck set to %q with %d main deck cards", d.Name, remaining)

	m.emit(context.Background(), events.TypeGameplayStarted, events.GameplayEvent{DeckID: id, Remaining: remaining})
	return nil
}

// GameplayDeck returns a copy of the gameplay snapshot, or nil.
func (m *Manager) GameplayDeck() *deck.Deck {
	m.mu.Lock()
	defer m.unlock()

	if m.gameplay == nil {
		return nil
	}
	return m.gameplay.Clone()
}

// DrawFromMainDeck removes and returns one card from the snapshot's main
// deck. Every physical copy is equally likely: the pool is rebuilt from the
// counts on each draw, ordered by card ID.
func (m *Manager) DrawFromMainDeck() (*cards.Card, error) {
	m.mu.Lock()
	defer m.unlock()

	if m.gameplay == nil {
		log.Printf("[DeckManager] Cannot draw: %v", ErrNoGameplayDeck)
		return nil, ErrNoGameplayDeck
	}

	main := m.gameplay.MainDeckCards
	pool := make([]*cards.Card, 0, deck.MaxMainDeckSize)
	for _, card := range deck.SortedByID(main) {
		for i := 0; i < main[card]; i++ {
			pool = append(pool, card)
		}
	}
	if len(pool) == 0 {
		log.Printf("[DeckManager] Cannot draw: %v", ErrDeckEmpty)
		return nil, ErrDeckEmpty
	}

	drawn := pool[m.intN(len(pool))]
	main[drawn]--
	if main[drawn] <= 0 {
		delete(main, drawn)
	}
	remaining := len(pool) - 1
	m.debugf("Drew %s, %d cards left", drawn, remaining)

	m.emit(context.Background(), events.TypeCardDrawn, events.CardDrawnEvent{
		DeckID:    m.gameplay.ID,
		CardID:    drawn.ID,
		Title:     drawn.Title,
		Remaining: remaining,
	})
	return drawn, nil
}
