package cards

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

// Loader provides the raw card definitions a Catalog is built from.
type Loader interface {
	LoadAll(ctx context.Context) ([]*Card, error)
}

// Catalog is the read-only registry of every card definition in the game.
// It is built once at startup and never mutated afterwards, so it is safe
// for concurrent readers.
type Catalog struct {
	cards []*Card
	byID  map[int]*Card
}

// NewCatalog builds a catalog from the given definitions. Duplicate IDs keep
// the first definition and log the rest; nil entries are skipped.
func NewCatalog(defs []*Card) *Catalog {
	c := &Catalog{
		cards: make([]*Card, 0, len(defs)),
		byID:  make(map[int]*Card, len(defs)),
	}

	for _, card := range defs {
		if card == nil {
			continue
		}
		if existing, ok := c.byID[card.ID]; ok {
			log.Printf("[Catalog] Duplicate card ID %d: keeping %q, ignoring %q", card.ID, existing.Title, card.Title)
			continue
		}
		c.byID[card.ID] = card
		c.cards = append(c.cards, card)
	}

	if len(c.cards) == 0 {
		log.Printf("[Catalog] WARNING: catalog is empty, no card definitions were loaded")
	} else {
		log.Printf("[Catalog] Loaded %d card definitions", len(c.cards))
	}

	return c
}

// LoadCatalog loads definitions from the loader and builds a catalog.
func LoadCatalog(ctx context.Context, loader Loader) (*Catalog, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}

	defs, err := loader.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load card definitions: %w", err)
	}

	return NewCatalog(defs), nil
}

// LoadAll returns every card definition in load order.
// The returned slice is a copy; the cards themselves are shared.
func (c *Catalog) LoadAll() []*Card {
	out := make([]*Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// Get resolves a card by its persistent ID.
func (c *Catalog) Get(id int) (*Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// FindByTitle returns the first card whose title matches case-insensitively.
func (c *Catalog) FindByTitle(title string) (*Card, bool) {
	title = strings.TrimSpace(title)
	for _, card := range c.cards {
		if strings.EqualFold(card.Title, title) {
			return card, true
		}
	}
	return nil, false
}

// Search filters the catalog the way the deck builder does: a case-insensitive
// substring match against title, description, type and faction. An empty query
// returns every card. Results are sorted by title.
func (c *Catalog) Search(query string) []*Card {
	query = strings.ToLower(strings.TrimSpace(query))

	results := make([]*Card, 0, len(c.cards))
	for _, card := range c.cards {
		if query == "" || matches(card, query) {
			results = append(results, card)
		}
	}

	SortByTitle(results)
	return results
}

func matches(card *Card, query string) bool {
	return strings.Contains(strings.ToLower(card.Title), query) ||
		strings.Contains(strings.ToLower(card.Description), query) ||
		strings.Contains(strings.ToLower(string(card.Type)), query) ||
		strings.Contains(strings.ToLower(string(card.Faction)), query)
}

// SortByTitle sorts cards by title, breaking ties by ID.
func SortByTitle(list []*Card) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Title != list[j].Title {
			return list[i].Title < list[j].Title
		}
		return list[i].ID < list[j].ID
	})
}
