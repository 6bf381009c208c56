// Package collection tracks how many copies of each card the player owns.
package collection

import (
	"log"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
)

// Collection maps a catalog card to the number of copies owned.
// Entries with a count of zero or less are never stored.
type Collection struct {
	owned map[*cards.Card]int
}

// New creates an empty collection.
func New() *Collection {
	return &Collection{owned: make(map[*cards.Card]int)}
}

// GetCount returns the owned count, 0 for nil or unknown cards.
func (c *Collection) GetCount(card *cards.Card) int {
	if card == nil {
		return 0
	}
	return c.owned[card]
}

// SetCount sets the owned count. A count of zero or less removes the entry.
func (c *Collection) SetCount(card *cards.Card, n int) {
	if card == nil {
		return
	}
	if n <= 0 {
		delete(c.owned, card)
		return
	}
	c.owned[card] = n
}

// AddCount grants delta copies. Non-positive deltas are ignored.
func (c *Collection) AddCount(card *cards.Card, delta int) {
	if card == nil || delta <= 0 {
		return
	}
	c.SetCount(card, c.GetCount(card)+delta)
}

// RemoveCount spends delta copies. It fails without changing anything when
// the player owns fewer than delta copies.
func (c *Collection) RemoveCount(card *cards.Card, delta int) bool {
	if card == nil || delta <= 0 {
		return false
	}

	current := c.GetCount(card)
	if current < delta {
		return false
	}

	c.SetCount(card, current-delta)
	return true
}

// InitializeWithAll replaces every entry with copiesEach copies of each card.
// Used on first run when nothing has been saved yet.
func (c *Collection) InitializeWithAll(all []*cards.Card, copiesEach int) {
	c.owned = make(map[*cards.Card]int, len(all))
	for _, card := range all {
		c.SetCount(card, copiesEach)
	}
	log.Printf("[Collection] Initialized with %d unique cards, %d copies each", len(c.owned), copiesEach)
}

// Len returns the number of distinct cards owned.
func (c *Collection) Len() int {
	return len(c.owned)
}

// Total returns the number of physical copies owned.
func (c *Collection) Total() int {
	total := 0
	for _, n := range c.owned {
		total += n
	}
	return total
}

// Entry is one owned card and its count.
type Entry struct {
	Card  *cards.Card `json:"card"`
	Count int         `json:"count"`
}

// Entries returns the owned cards sorted by title.
func (c *Collection) Entries() []Entry {
	list := make([]*cards.Card, 0, len(c.owned))
	for card := range c.owned {
		list = append(list, card)
	}
	cards.SortByTitle(list)

	out := make([]Entry, 0, len(list))
	for _, card := range list {
		out = append(out, Entry{Card: card, Count: c.owned[card]})
	}
	return out
}

// Counts returns a copy of the underlying map.
func (c *Collection) Counts() map[*cards.Card]int {
	out := make(map[*cards.Card]int, len(c.owned))
	for card, n := range c.owned {
		out[card] = n
	}
	return out
}

// Clone returns an independent copy.
func (c *Collection) Clone() *Collection {
	return &Collection{owned: c.Counts()}
}
