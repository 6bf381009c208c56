package cardimport

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/storage"
	"github.com/ramonehamilton/deckkeeper/internal/storage/repository"
)

// SQLSink writes cards to the catalog table of a SQLite database.
type SQLSink struct {
	db *storage.DB
}

// NewSQLSink creates a sink on an open database.
func NewSQLSink(db *storage.DB) *SQLSink {
	return &SQLSink{db: db}
}

// Existing returns the stored title index.
func (s *SQLSink) Existing(ctx context.Context) (map[string]int, error) {
	return repository.NewCardRepository(s.db.Conn()).TitleIndex(ctx)
}

// Write upserts every card in one transaction. Cards no longer in the
// authoring file stay in the table so old decks still resolve.
func (s *SQLSink) Write(ctx context.Context, defs []*cards.Card) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		repo := repository.NewCardRepository(tx)
		for _, card := range defs {
			if err := repo.Upsert(ctx, card); err != nil {
				return err
			}
		}
		return nil
	})
}

// JSONSink writes a normalized catalog file: the authoring format with every
// ID filled in. cards.FileLoader reads it back unchanged.
type JSONSink struct {
	path string
}

// NewJSONSink creates a sink for the given output file.
func NewJSONSink(path string) *JSONSink {
	return &JSONSink{path: path}
}

// Existing reads the IDs from a previous output file. A missing file means
// nothing was imported yet.
func (s *JSONSink) Existing(_ context.Context) (map[string]int, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	records, err := cards.ParseRecords(data)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(records))
	for _, r := range records {
		if r.ID > 0 {
			index[r.Title] = r.ID
		}
	}
	return index, nil
}

// Write replaces the output file.
func (s *JSONSink) Write(_ context.Context, defs []*cards.Card) error {
	records := make([]cards.Record, 0, len(defs))
	for _, c := range defs {
		records = append(records, toRecord(c))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}

func toRecord(c *cards.Card) cards.Record {
	return cards.Record{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Type:        string(c.Type),
		Faction:     string(c.Faction),
		Cost:        c.Cost,
		Attack:      c.Attack,
		Health:      c.Health,
		Level:       c.Level,
		CardImg:     c.ArtRef,
	}
}
