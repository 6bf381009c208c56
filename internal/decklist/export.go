// Package decklist converts decks to and from a plain-text list:
//
//	// Deck Name
//	Deck
//	2 Ember Drake
//	1 Arcane Bolt
//
//	Stage
//	1 Moonlit Grove
package decklist

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/deckkeeper/internal/deck"
)

// Section headers.
const (
	headerMain  = "Deck"
	headerStage = "Stage"
)

// ExportOptions controls deck export behavior.
type ExportOptions struct {
	IncludeName bool // Write the deck name as a "//" comment line
	UseX        bool // Write "2x Title" instead of "2 Title"
}

// DeckExport is an exported deck.
type DeckExport struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// Export renders a deck. Both partitions are listed by title.
func Export(d *deck.Deck, options *ExportOptions) (*DeckExport, error) {
	if d == nil {
		return nil, fmt.Errorf("deck is nil")
	}
	if options == nil {
		options = &ExportOptions{IncludeName: true}
	}

	var sb strings.Builder
	if options.IncludeName {
		fmt.Fprintf(&sb, "// %s\n", d.Name)
	}

	sb.WriteString(headerMain + "\n")
	writeEntries(&sb, d.Entries(deck.PartitionMain), options.UseX)

	if stage := d.Entries(deck.PartitionStage); len(stage) > 0 {
		sb.WriteString("\n" + headerStage + "\n")
		writeEntries(&sb, stage, options.UseX)
	}

	return &DeckExport{
		Content:  sb.String(),
		Filename: sanitizeFilename(d.Name) + ".txt",
	}, nil
}

func writeEntries(sb *strings.Builder, entries []deck.Entry, useX bool) {
	format := "%d %s\n"
	if useX {
		format = "%dx %s\n"
	}
	for _, e := range entries {
		fmt.Fprintf(sb, format, e.Count, e.Card.Title)
	}
}

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	result := strings.TrimSpace(replacer.Replace(name))
	if len(result) > 100 {
		result = result[:100]
	}
	if result == "" {
		result = "deck"
	}
	return result
}
