// Package savefile converts decks and the player collection to and from the
// flat save-file documents. Cards are referenced by their catalog ID through
// index-aligned id/count arrays; decoding resolves each ID against the live
// catalog and drops anything it cannot resolve.
package savefile

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is written into every document. Documents without a
// version field predate it and decode the same way.
const CurrentVersion = 1

// DeckRecord is one deck in flat form.
type DeckRecord struct {
	DeckName            string `json:"deckName"`
	UniqueID            string `json:"uniqueID"`
	MainDeckCardIDs     []int  `json:"mainDeckCardIds"`
	MainDeckCardCounts  []int  `json:"mainDeckCardCounts"`
	StageDeckCardIDs    []int  `json:"stageDeckCardIds"`
	StageDeckCardCounts []int  `json:"stageDeckCardCounts"`
}

// DeckSetDocument is the decks file.
type DeckSetDocument struct {
	Version               int          `json:"version,omitempty"`
	AllDecks              []DeckRecord `json:"allDecks"`
	CurrentSelectedDeckID string       `json:"currentSelectedDeckID"`
}

// CollectionDocument is the collection file.
type CollectionDocument struct {
	Version    int   `json:"version,omitempty"`
	CardIDs    []int `json:"cardIds"`
	CardCounts []int `json:"cardCounts"`
}

// MarshalDeckSet renders the decks file as indented JSON.
func MarshalDeckSet(doc *DeckSetDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deck set: %w", err)
	}
	return data, nil
}

// UnmarshalDeckSet parses the decks file.
func UnmarshalDeckSet(data []byte) (*DeckSetDocument, error) {
	var doc DeckSetDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse deck set: %w", err)
	}
	if doc.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported deck set version %d", doc.Version)
	}
	return &doc, nil
}

// MarshalCollection renders the collection file as indented JSON.
func MarshalCollection(doc *CollectionDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal collection: %w", err)
	}
	return data, nil
}

// UnmarshalCollection parses the collection file.
func UnmarshalCollection(data []byte) (*CollectionDocument, error) {
	var doc CollectionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse collection: %w", err)
	}
	if doc.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported collection version %d", doc.Version)
	}
	return &doc, nil
}
