// Package deckmanager is the rule engine over the catalog, the player
// collection and the deck set. It owns the single editing session and the
// gameplay snapshot, and it is the only place deck rules are enforced.
package deckmanager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/collection"
	"github.com/ramonehamilton/deckkeeper/internal/deck"
	"github.com/ramonehamilton/deckkeeper/internal/events"
	"github.com/ramonehamilton/deckkeeper/internal/savefile"
	"github.com/ramonehamilton/deckkeeper/internal/storage"
)

// DefaultCopiesPerCard seeds a fresh collection on first run.
const DefaultCopiesPerCard = 2

// Manager is safe for concurrent use; every public method holds one mutex.
// Events are dispatched after the mutex is released.
type Manager struct {
	mu sync.Mutex

	catalog    *cards.Catalog
	collection *collection.Collection
	decks      *deck.Set

	session  *session
	gameplay *deck.Deck

	store         storage.Store
	dispatcher    events.Dispatcher
	intN          func(n int) int
	defaultCopies int
	debug         bool

	pending []events.Event
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the persistence backend. Without one, Save and commits
// keep everything in memory.
func WithStore(store storage.Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithDispatcher sets where domain events go.
func WithDispatcher(d events.Dispatcher) Option {
	return func(m *Manager) {
		m.dispatcher = d
	}
}

// WithRand sets the random source used by DrawFromMainDeck.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) {
		m.intN = r.IntN
	}
}

// WithDefaultCopies sets how many copies of each card a first-run collection gets.
func WithDefaultCopies(n int) Option {
	return func(m *Manager) {
		m.defaultCopies = n
	}
}

// WithDebug enables per-card log lines.
func WithDebug(debug bool) Option {
	return func(m *Manager) {
		m.debug = debug
	}
}

// New creates a manager over catalog with an empty collection and deck set.
// Call Load to restore saved state.
func New(catalog *cards.Catalog, opts ...Option) *Manager {
	if catalog == nil {
		catalog = cards.NewCatalog(nil)
	}
	m := &Manager{
		catalog:       catalog,
		collection:    collection.New(),
		decks:         deck.NewSet(),
		intN:          rand.IntN,
		defaultCopies: DefaultCopiesPerCard,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) unlock() {
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	if m.dispatcher == nil {
		return
	}
	for _, event := range pending {
		m.dispatcher.Dispatch(event)
	}
}

func (m *Manager) emit(ctx context.Context, eventType string, data any) {
	m.pending = append(m.pending, events.NewEvent(ctx, eventType, data))
}

func (m *Manager) debugf(format string, args ...any) {
	if m.debug {
		log.Printf("[DeckManager] "+format, args...)
	}
}

// Catalog returns the card catalog.
func (m *Manager) Catalog() *cards.Catalog {
	return m.catalog
}

// LoadResult describes what Load restored.
type LoadResult struct {
	Decks  int
	Report savefile.DecodeReport
	// Seeded is set when no collection was saved and a default one was created.
	Seeded bool
}

// Load restores the deck set and the collection from the store. A document
// that cannot be read resets that part of the state to empty; the returned
// error lists every document that was reset. A missing collection seeds
// defaultCopies of every catalog card and saves it.
func (m *Manager) Load(ctx context.Context) (LoadResult, error) {
	m.mu.Lock()
	defer m.unlock()

	var result LoadResult
	if m.store == nil {
		return result, nil
	}

	var errs []error

	deckDoc, err := m.store.LoadDeckSet(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		m.decks = deck.NewSet()
		log.Printf("[DeckManager] No saved decks, starting with an empty deck set")
	case err != nil:
		m.decks = deck.NewSet()
		log.Printf("[DeckManager] Failed to load decks, resetting to empty: %v", err)
		errs = append(errs, fmt.Errorf("failed to load decks: %w", err))
	default:
		set, report := savefile.DecodeDeckSet(deckDoc, m.catalog)
		m.decks = set
		result.Report = report
		m.fixSelection()
	}

	collectionDoc, err := m.store.LoadCollection(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		m.collection = collection.New()
		m.collection.InitializeWithAll(m.catalog.LoadAll(), m.defaultCopies)
		result.Seeded = true
		if saveErr := m.store.SaveCollection(ctx, savefile.EncodeCollection(m.collection)); saveErr != nil {
			log.Printf("[DeckManager] Failed to save seeded collection: %v", saveErr)
		}
	case err != nil:
		m.collection = collection.New()
		log.Printf("[DeckManager] Failed to load collection, resetting to empty: %v", err)
		errs = append(errs, fmt.Errorf("failed to load collection: %w", err))
	default:
		c, report := savefile.DecodeCollection(collectionDoc, m.catalog)
		m.collection = c
		result.Report.UnknownCards += report.UnknownCards
		result.Report.InvalidEntries += report.InvalidEntries
	}

	m.session = nil
	m.gameplay = nil
	result.Decks = m.decks.Len()

	log.Printf("[DeckManager] Loaded %d decks and %d owned cards (%d entries dropped)",
		result.Decks, m.collection.Len(), result.Report.Dropped())
	return result, errors.Join(errs...)
}

// fixSelection points the selection at the first deck when the saved ID no
// longer exists.
func (m *Manager) fixSelection() {
	id := m.decks.SelectedDeckID
	if id == "" || m.decks.Get(id) != nil {
		return
	}
	fallback := ""
	if m.decks.Len() > 0 {
		fallback = m.decks.Decks[0].ID
	}
	log.Printf("[DeckManager] Selected deck %s no longer exists, selecting %q", id, fallback)
	m.decks.SelectedDeckID = fallback
}

// Save writes the deck set and the collection.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.unlock()
	return m.saveLocked(ctx)
}

func (m *Manager) saveLocked(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	var errs []error
	if err := m.store.SaveDeckSet(ctx, savefile.EncodeDeckSet(m.decks)); err != nil {
		errs = append(errs, err)
	}
	if err := m.store.SaveCollection(ctx, savefile.EncodeCollection(m.collection)); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("[DeckManager] Save failed: %v", err)
		return err
	}
	return nil
}
