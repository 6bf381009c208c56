package handlers

import (
	"github.com/ramonehamilton/deckkeeper/internal/deck"
)

// EntryView is one card line of a deck partition.
type EntryView struct {
	CardID int    `json:"card_id"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Count  int    `json:"count"`
}

// DeckView is the JSON form of a deck.
type DeckView struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	MainDeck   []EntryView `json:"main_deck"`
	StageDeck  []EntryView `json:"stage_deck"`
	MainCount  int         `json:"main_count"`
	StageCount int         `json:"stage_count"`
	Selected   bool        `json:"selected,omitempty"`
}

// DeckListItem is a deck summary for listings.
type DeckListItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MainCount  int    `json:"main_count"`
	StageCount int    `json:"stage_count"`
	Selected   bool   `json:"selected"`
}

func toDeckView(d *deck.Deck, selectedID string) *DeckView {
	return &DeckView{
		ID:         d.ID,
		Name:       d.Name,
		MainDeck:   toEntryViews(d.Entries(deck.PartitionMain)),
		StageDeck:  toEntryViews(d.Entries(deck.PartitionStage)),
		MainCount:  d.Total(deck.PartitionMain),
		StageCount: d.Total(deck.PartitionStage),
		Selected:   d.ID == selectedID,
	}
}

func toEntryViews(entries []deck.Entry) []EntryView {
	out := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryView{
			CardID: e.Card.ID,
			Title:  e.Card.Title,
			Type:   string(e.Card.Type),
			Count:  e.Count,
		})
	}
	return out
}
