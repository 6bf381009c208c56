// Package deck holds the deck data model. It carries no rule enforcement;
// the deck manager validates every mutation.
package deck

import (
	"sort"

	"github.com/google/uuid"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
)

const (
	MaxMainDeckSize  = 30
	MaxStageDeckSize = 5
	MaxCopiesPerCard = 2
)

// Partition selects one half of a deck.
type Partition string

const (
	PartitionMain  Partition = "main"
	PartitionStage Partition = "stage"
)

// PartitionFor returns the partition a card belongs to.
func PartitionFor(card *cards.Card) Partition {
	if card.IsStage() {
		return PartitionStage
	}
	return PartitionMain
}

// MaxSize returns the capacity of the partition.
func (p Partition) MaxSize() int {
	if p == PartitionStage {
		return MaxStageDeckSize
	}
	return MaxMainDeckSize
}

// Deck is a named container of two card multisets.
type Deck struct {
	ID             string
	Name           string
	MainDeckCards  map[*cards.Card]int
	StageDeckCards map[*cards.Card]int
}

// New creates an empty deck with a freshly generated ID.
func New(name string) *Deck {
	return NewWithID(name, "")
}

// NewWithID creates an empty deck. An empty id gets a generated UUID.
func NewWithID(name, id string) *Deck {
	if id == "" {
		id = uuid.New().String()
	}
	return &Deck{
		ID:             id,
		Name:           name,
		MainDeckCards:  make(map[*cards.Card]int),
		StageDeckCards: make(map[*cards.Card]int),
	}
}

// Cards returns the map backing the given partition.
func (d *Deck) Cards(p Partition) map[*cards.Card]int {
	if p == PartitionStage {
		return d.StageDeckCards
	}
	return d.MainDeckCards
}

// Total returns the number of physical cards in the partition.
func (d *Deck) Total(p Partition) int {
	return sum(d.Cards(p))
}

// Count returns the copies of card in the partition the card belongs to.
func (d *Deck) Count(card *cards.Card) int {
	if card == nil {
		return 0
	}
	return d.Cards(PartitionFor(card))[card]
}

// Clone returns a deep copy: both maps are duplicated, cards are shared.
func (d *Deck) Clone() *Deck {
	return &Deck{
		ID:             d.ID,
		Name:           d.Name,
		MainDeckCards:  copyCounts(d.MainDeckCards),
		StageDeckCards: copyCounts(d.StageDeckCards),
	}
}

// Entry is a card and its count in one partition.
type Entry struct {
	Card  *cards.Card `json:"card"`
	Count int         `json:"count"`
}

// Entries lists the partition sorted by card title.
func (d *Deck) Entries(p Partition) []Entry {
	counts := d.Cards(p)
	list := make([]*cards.Card, 0, len(counts))
	for card := range counts {
		list = append(list, card)
	}
	cards.SortByTitle(list)

	out := make([]Entry, 0, len(list))
	for _, card := range list {
		out = append(out, Entry{Card: card, Count: counts[card]})
	}
	return out
}

// SortedByID lists the cards of a count map in ascending ID order.
func SortedByID(counts map[*cards.Card]int) []*cards.Card {
	list := make([]*cards.Card, 0, len(counts))
	for card := range counts {
		list = append(list, card)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func copyCounts(src map[*cards.Card]int) map[*cards.Card]int {
	dst := make(map[*cards.Card]int, len(src))
	for card, n := range src {
		dst[card] = n
	}
	return dst
}

func sum(counts map[*cards.Card]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
