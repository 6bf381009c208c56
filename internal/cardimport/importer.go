// Package cardimport turns the card authoring file into a catalog with IDs
// that stay the same across re-imports, so saved decks and collections keep
// resolving after the design sheet changes.
package cardimport

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
)

// Sink is where imported cards are written.
type Sink interface {
	// Existing maps every title already in the sink to its ID.
	Existing(ctx context.Context) (map[string]int, error)

	// Write stores the full imported card list.
	Write(ctx context.Context, defs []*cards.Card) error
}

// Result summarizes one import run.
type Result struct {
	Total    int
	New      int
	Kept     int
	Skipped  int
	Warnings []string
}

// AssignStableIDs converts records to cards. A title already present in
// existing keeps its ID. New titles use the record's own ID when it is free
// and max(id)+1 otherwise. Titles are matched case-insensitively; a title
// repeated in the file is skipped.
func AssignStableIDs(records []cards.Record, existing map[string]int) ([]*cards.Card, *Result) {
	result := &Result{}

	known := make(map[string]int, len(existing))
	used := make(map[int]bool, len(existing))
	next := 1
	for title, id := range existing {
		known[titleKey(title)] = id
		used[id] = true
		if id >= next {
			next = id + 1
		}
	}
	for _, r := range records {
		if r.ID >= next {
			next = r.ID + 1
		}
	}

	seen := make(map[string]bool, len(records))
	out := make([]*cards.Card, 0, len(records))
	for i, r := range records {
		key := titleKey(r.Title)
		if key == "" {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("record %d has no title", i+1))
			continue
		}
		if seen[key] {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("record %d repeats title %q", i+1, r.Title))
			continue
		}
		seen[key] = true

		id, ok := known[key]
		switch {
		case ok:
			result.Kept++
		case r.ID > 0 && !used[r.ID]:
			id = r.ID
			result.New++
		default:
			id = next
			next++
			result.New++
		}
		used[id] = true
		out = append(out, r.ToCard(id))
	}

	result.Total = len(out)
	return out, result
}

// Run imports the authoring file at source into sink.
func Run(ctx context.Context, source string, sink Sink) (*Result, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read authoring file: %w", err)
	}
	records, err := cards.ParseRecords(data)
	if err != nil {
		return nil, err
	}

	existing, err := sink.Existing(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing cards: %w", err)
	}

	defs, result := AssignStableIDs(records, existing)
	for _, w := range result.Warnings {
		log.Printf("[CardImport] Warning: %s", w)
	}

	if err := sink.Write(ctx, defs); err != nil {
		return nil, fmt.Errorf("failed to write cards: %w", err)
	}

	log.Printf("[CardImport] Imported %d cards from %s (%d new, %d kept, %d skipped)",
		result.Total, source, result.New, result.Kept, result.Skipped)
	return result, nil
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
