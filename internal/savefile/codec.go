package savefile

import (
	"log"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/collection"
	"github.com/ramonehamilton/deckkeeper/internal/deck"
)

// Resolver looks up catalog cards by persistent ID. *cards.Catalog satisfies it.
type Resolver interface {
	Get(id int) (*cards.Card, bool)
}

// DecodeReport counts what a decode had to drop.
type DecodeReport struct {
	// UnknownCards counts entries whose card ID is not in the catalog.
	UnknownCards int
	// InvalidEntries counts non-positive counts and id/count arrays of
	// different lengths (the unaligned tail).
	InvalidEntries int
	// MisplacedCards counts cards stored in the wrong partition for their type.
	MisplacedCards int
	// DuplicateDecks counts decks skipped because their ID was already seen.
	DuplicateDecks int
}

// Dropped returns the total number of dropped entries.
func (r DecodeReport) Dropped() int {
	return r.UnknownCards + r.InvalidEntries + r.MisplacedCards + r.DuplicateDecks
}

func (r *DecodeReport) add(o DecodeReport) {
	r.UnknownCards += o.UnknownCards
	r.InvalidEntries += o.InvalidEntries
	r.MisplacedCards += o.MisplacedCards
	r.DuplicateDecks += o.DuplicateDecks
}

// EncodeCollection flattens the collection, ordered by card ID.
func EncodeCollection(c *collection.Collection) *CollectionDocument {
	counts := c.Counts()
	doc := &CollectionDocument{
		Version:    CurrentVersion,
		CardIDs:    make([]int, 0, len(counts)),
		CardCounts: make([]int, 0, len(counts)),
	}
	for _, card := range deck.SortedByID(counts) {
		doc.CardIDs = append(doc.CardIDs, card.ID)
		doc.CardCounts = append(doc.CardCounts, counts[card])
	}
	return doc
}

// DecodeCollection rebuilds a collection. IDs missing from the catalog are
// dropped and counted, never treated as errors.
func DecodeCollection(doc *CollectionDocument, resolver Resolver) (*collection.Collection, DecodeReport) {
	c := collection.New()
	var report DecodeReport
	if doc == nil {
		return c, report
	}

	forEachPair(doc.CardIDs, doc.CardCounts, resolver, &report, func(card *cards.Card, n int) {
		c.AddCount(card, n)
	})

	logReport("collection", report)
	return c, report
}

// EncodeDeckSet flattens every deck, keeping deck order.
func EncodeDeckSet(set *deck.Set) *DeckSetDocument {
	doc := &DeckSetDocument{
		Version:               CurrentVersion,
		AllDecks:              make([]DeckRecord, 0, set.Len()),
		CurrentSelectedDeckID: set.SelectedDeckID,
	}
	for _, d := range set.Decks {
		doc.AllDecks = append(doc.AllDecks, EncodeDeck(d))
	}
	return doc
}

// EncodeDeck flattens one deck.
func EncodeDeck(d *deck.Deck) DeckRecord {
	rec := DeckRecord{DeckName: d.Name, UniqueID: d.ID}
	rec.MainDeckCardIDs, rec.MainDeckCardCounts = flatten(d.MainDeckCards)
	rec.StageDeckCardIDs, rec.StageDeckCardCounts = flatten(d.StageDeckCards)
	return rec
}

// DecodeDeckSet rebuilds the deck set. Decks with a repeated ID keep the
// first occurrence; decks without an ID get a fresh one.
func DecodeDeckSet(doc *DeckSetDocument, resolver Resolver) (*deck.Set, DecodeReport) {
	set := deck.NewSet()
	var report DecodeReport
	if doc == nil {
		return set, report
	}

	seen := make(map[string]bool, len(doc.AllDecks))
	for _, rec := range doc.AllDecks {
		if rec.UniqueID != "" && seen[rec.UniqueID] {
			report.DuplicateDecks++
			continue
		}
		d, deckReport := DecodeDeck(rec, resolver)
		report.add(deckReport)
		seen[d.ID] = true
		set.Add(d)
	}
	set.SelectedDeckID = doc.CurrentSelectedDeckID

	logReport("deck set", report)
	return set, report
}

// DecodeDeck rebuilds one deck.
func DecodeDeck(rec DeckRecord, resolver Resolver) (*deck.Deck, DecodeReport) {
	d := deck.NewWithID(rec.DeckName, rec.UniqueID)
	var report DecodeReport

	fill := func(p deck.Partition, ids, counts []int) {
		target := d.Cards(p)
		forEachPair(ids, counts, resolver, &report, func(card *cards.Card, n int) {
			if deck.PartitionFor(card) != p {
				report.MisplacedCards++
				return
			}
			target[card] += n
		})
	}
	fill(deck.PartitionMain, rec.MainDeckCardIDs, rec.MainDeckCardCounts)
	fill(deck.PartitionStage, rec.StageDeckCardIDs, rec.StageDeckCardCounts)

	return d, report
}

func flatten(counts map[*cards.Card]int) ([]int, []int) {
	ids := make([]int, 0, len(counts))
	ns := make([]int, 0, len(counts))
	for _, card := range deck.SortedByID(counts) {
		if counts[card] <= 0 {
			continue
		}
		ids = append(ids, card.ID)
		ns = append(ns, counts[card])
	}
	return ids, ns
}

func forEachPair(ids, counts []int, resolver Resolver, report *DecodeReport, fn func(*cards.Card, int)) {
	n := len(ids)
	if len(counts) < n {
		n = len(counts)
	}
	report.InvalidEntries += len(ids) - n + len(counts) - n

	for i := 0; i < n; i++ {
		if counts[i] <= 0 {
			report.InvalidEntries++
			continue
		}
		card, ok := resolver.Get(ids[i])
		if !ok {
			report.UnknownCards++
			continue
		}
		fn(card, counts[i])
	}
}

func logReport(what string, report DecodeReport) {
	if report.Dropped() == 0 {
		return
	}
	log.Printf("[SaveFile] Dropped %d entries while decoding %s (unknown cards: %d, invalid: %d, misplaced: %d, duplicate decks: %d)",
		report.Dropped(), what, report.UnknownCards, report.InvalidEntries, report.MisplacedCards, report.DuplicateDecks)
}
