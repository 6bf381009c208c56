package deckmanager

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ramonehamilton/deckkeeper/internal/deck"
	"github.com/ramonehamilton/deckkeeper/internal/events"
)

const untitledDeckPrefix = "Untitled Deck"

// CreateDeck appends a new empty deck. An empty or blank name picks the next
// free "Untitled Deck n". The deck set is not persisted; call Save.
func (m *Manager) CreateDeck(name string) (*deck.Deck, error) {
	m.mu.Lock()
	defer m.unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = m.nextUntitledName()
	}
	if m.decks.NameTaken(name, "") {
		log.Printf("[DeckManager] Cannot create deck: name %q is already taken", name)
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
	}

	d := deck.New(name)
	m.decks.Add(d)
	log.Printf("[DeckManager] Created deck %q (%s)", d.Name, d.ID)

	m.emit(context.Background(), events.TypeDeckCreated, events.DeckEvent{DeckID: d.ID, Name: d.Name})
	return d.Clone(), nil
}

func (m *Manager) nextUntitledName() string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s %d", untitledDeckPrefix, n)
		if !m.decks.NameTaken(name, "") {
			return name
		}
	}
}

// DeleteDeck removes a deck. Deleting the selected deck moves the selection
// to the first remaining deck.
func (m *Manager) DeleteDeck(id string) error {
	m.mu.Lock()
	defer m.unlock()

	d, ok := m.decks.Remove(id)
	if !ok {
		log.Printf("[DeckManager] Cannot delete deck %s: not found", id)
		return fmt.Errorf("%w: %s", ErrDeckNotFound, id)
	}
	if m.decks.SelectedDeckID == id {
		m.decks.SelectedDeckID = ""
		if m.decks.Len() > 0 {
			m.decks.SelectedDeckID = m.decks.Decks[0].ID
		}
	}
	log.Printf("[DeckManager] Deleted deck %q (%s)", d.Name, d.ID)

	m.emit(context.Background(), events.TypeDeckDeleted, events.DeckEvent{DeckID: d.ID, Name: d.Name})
	return nil
}

// GetDeck returns a copy of the deck, or nil.
func (m *Manager) GetDeck(id string) *deck.Deck {
	m.mu.Lock()
	defer m.unlock()

	d := m.decks.Get(id)
	if d == nil {
		return nil
	}
	return d.Clone()
}

// GetAllDecks returns copies of every deck in creation order.
func (m *Manager) GetAllDecks() []*deck.Deck {
	m.mu.Lock()
	defer m.unlock()

	out := make([]*deck.Deck, 0, m.decks.Len())
	for _, d := range m.decks.Decks {
		out = append(out, d.Clone())
	}
	return out
}

// IsNameTaken reports whether a deck other than excludeID uses name.
func (m *Manager) IsNameTaken(name, excludeID string) bool {
	m.mu.Lock()
	defer m.unlock()
	return m.decks.NameTaken(name, excludeID)
}

// SelectedDeckID returns the deck chosen for play, or "".
func (m *Manager) SelectedDeckID() string {
	m.mu.Lock()
	defer m.unlock()
	return m.decks.SelectedDeckID
}

// SetSelectedDeck chooses the deck for play. An empty id clears the selection.
func (m *Manager) SetSelectedDeck(id string) error {
	m.mu.Lock()
	defer m.unlock()

	name := ""
	if id != "" {
		d := m.decks.Get(id)
		if d == nil {
			log.Printf("[DeckManager] Cannot select deck %s: not found", id)
			return fmt.Errorf("%w: %s", ErrDeckNotFound, id)
		}
		name = d.Name
	}
	m.decks.SelectedDeckID = id

	m.emit(context.Background(), events.TypeDeckSelected, events.DeckEvent{DeckID: id, Name: name})
	return nil
}
