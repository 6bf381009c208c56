package deckmanager

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/events"
	"github.com/ramonehamilton/deckkeeper/internal/savefile"
	"github.com/ramonehamilton/deckkeeper/internal/storage"
)

// memStore is an in-memory storage.Store with injectable failures.
type memStore struct {
	mu sync.Mutex

	decks      *savefile.DeckSetDocument
	collection *savefile.CollectionDocument

	loadDecksErr      error
	loadCollectionErr error
	saveErr           error

	deckSaves       int
	collectionSaves int
}

func (s *memStore) LoadDeckSet(_ context.Context) (*savefile.DeckSetDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadDecksErr != nil {
		return nil, s.loadDecksErr
	}
	if s.decks == nil {
		return nil, storage.ErrNotFound
	}
	return s.decks, nil
}

func (s *memStore) SaveDeckSet(_ context.Context, doc *savefile.DeckSetDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.decks = doc
	s.deckSaves++
	return nil
}

func (s *memStore) LoadCollection(_ context.Context) (*savefile.CollectionDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadCollectionErr != nil {
		return nil, s.loadCollectionErr
	}
	if s.collection == nil {
		return nil, storage.ErrNotFound
	}
	return s.collection, nil
}

func (s *memStore) SaveCollection(_ context.Context, doc *savefile.CollectionDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.collection = doc
	s.collectionSaves++
	return nil
}

func (s *memStore) Close() error { return nil }

var _ storage.Store = (*memStore)(nil)

// recorder collects dispatched event types.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Dispatch(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// testCatalog has 20 minions (IDs 1-20), 2 spells (21-22) and 4 stages (31-34).
func testCatalog() *cards.Catalog {
	var defs []*cards.Card
	for i := 1; i <= 20; i++ {
		defs = append(defs, &cards.Card{ID: i, Title: fmt.Sprintf("Minion %02d", i), Type: cards.TypeMinion})
	}
	defs = append(defs,
		&cards.Card{ID: 21, Title: "Arcane Bolt", Type: cards.TypeSpell},
		&cards.Card{ID: 22, Title: "Frost Nova", Type: cards.TypeSpell},
	)
	for i := 31; i <= 34; i++ {
		defs = append(defs, &cards.Card{ID: i, Title: fmt.Sprintf("Stage %d", i), Type: cards.TypeStage})
	}
	return cards.NewCatalog(defs)
}

func mustCard(t *testing.T, m *Manager, id int) *cards.Card {
	t.Helper()
	card, ok := m.Catalog().Get(id)
	if !ok {
		t.Fatalf("card %d not in test catalog", id)
	}
	return card
}

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return New(testCatalog(), opts...)
}
