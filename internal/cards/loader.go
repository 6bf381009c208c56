package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// Record is one card in the authoring file: a JSON array of objects as
// produced by the design spreadsheet export. ID is optional; the faction may
// be given as "faction" or as "class".
type Record struct {
	ID          int    `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Faction     string `json:"faction,omitempty"`
	Class       string `json:"class,omitempty"`
	Cost        string `json:"cost"`
	Attack      int    `json:"attack"`
	Health      int    `json:"health"`
	Level       int    `json:"level"`
	CardImg     string `json:"card_img,omitempty"`
}

// ToCard converts a record into a definition with the given ID. Unknown types
// default to Minion and unknown factions to Neutral, with a warning.
func (r Record) ToCard(id int) *Card {
	cardType, err := ParseType(r.Type)
	if err != nil {
		log.Printf("[CardLoader] Could not parse type %q for card %q, defaulting to %s", r.Type, r.Title, TypeMinion)
	}

	factionName := r.Faction
	if factionName == "" {
		factionName = r.Class
	}
	faction := FactionNeutral
	if factionName != "" {
		faction, err = ParseFaction(factionName)
		if err != nil {
			log.Printf("[CardLoader] Could not parse faction %q for card %q, defaulting to %s", factionName, r.Title, FactionNeutral)
		}
	}

	return &Card{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Type:        cardType,
		Faction:     faction,
		Cost:        strings.TrimSpace(r.Cost),
		Attack:      r.Attack,
		Health:      r.Health,
		Level:       r.Level,
		ArtRef:      r.CardImg,
	}
}

// ParseRecords decodes an authoring JSON array.
func ParseRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse card records: %w", err)
	}
	return records, nil
}

// AssignIDs converts records into cards. Records carrying an ID keep it;
// the rest are numbered after the highest explicit ID in file order, so a
// file without any IDs is numbered 1..n.
func AssignIDs(records []Record) []*Card {
	next := 1
	for _, r := range records {
		if r.ID >= next {
			next = r.ID + 1
		}
	}

	out := make([]*Card, 0, len(records))
	for _, r := range records {
		id := r.ID
		if id <= 0 {
			id = next
			next++
		}
		out = append(out, r.ToCard(id))
	}
	return out
}

// FileLoader loads card definitions from an authoring JSON file.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the given file.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// LoadAll reads and converts every record in the file.
func (l *FileLoader) LoadAll(ctx context.Context) ([]*Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cards file: %w", err)
	}

	records, err := ParseRecords(data)
	if err != nil {
		return nil, err
	}

	return AssignIDs(records), nil
}

// StaticLoader serves a fixed list of definitions. Useful for tests and
// for embedding a catalog in another program.
type StaticLoader []*Card

// LoadAll returns the static list.
func (s StaticLoader) LoadAll(_ context.Context) ([]*Card, error) {
	return []*Card(s), nil
}
