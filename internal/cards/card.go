package cards

import (
	"fmt"
	"strings"
)

// Type is the card type. Stage cards live in a deck's stage partition,
// everything else in the main partition.
type Type string

const (
	TypeMinion Type = "Minion"
	TypeSpell  Type = "Spell"
	TypeStage  Type = "Stage"
)

// Faction is the card's faction (the "class" column of the authoring file).
type Faction string

const (
	FactionNeutral Faction = "Neutral"
	FactionPurple  Faction = "Purple"
	FactionRed     Faction = "Red"
	FactionBlue    Faction = "Blue"
	FactionGreen   Faction = "Green"
	FactionYellow  Faction = "Yellow"
	FactionBlack   Faction = "Black"
	FactionWhite   Faction = "White"
)

var knownTypes = []Type{TypeMinion, TypeSpell, TypeStage}

var knownFactions = []Faction{
	FactionNeutral, FactionPurple, FactionRed, FactionBlue,
	FactionGreen, FactionYellow, FactionBlack, FactionWhite,
}

// ParseType parses a card type case-insensitively.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	for _, t := range knownTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return TypeMinion, fmt.Errorf("unknown card type %q", s)
}

// ParseFaction parses a faction case-insensitively.
func ParseFaction(s string) (Faction, error) {
	s = strings.TrimSpace(s)
	for _, f := range knownFactions {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return FactionNeutral, fmt.Errorf("unknown faction %q", s)
}

// Card is an immutable card definition. ID is stable across sessions and is
// the only key used when decks and collections are persisted.
type Card struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        Type    `json:"type"`
	Faction     Faction `json:"faction"`

	// Cost is free-form: usually a number, sometimes a keyword like "Free Summon".
	Cost   string `json:"cost"`
	Attack int    `json:"attack"`
	Health int    `json:"health"`
	Level  int    `json:"level"`

	// ArtRef is an opaque image handle (file name or asset path).
	ArtRef string `json:"art_ref,omitempty"`
}

// IsStage reports whether the card belongs in the stage partition.
func (c *Card) IsStage() bool {
	return c != nil && c.Type == TypeStage
}

// String returns a short human readable label.
func (c *Card) String() string {
	if c == nil {
		return "<nil card>"
	}
	return fmt.Sprintf("%s (#%d)", c.Title, c.ID)
}
