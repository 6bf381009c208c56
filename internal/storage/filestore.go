package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/ramonehamilton/deckkeeper/internal/savefile"
)

// Default save file names inside the data directory.
const (
	DefaultDecksFile      = "userDecks.json"
	DefaultCollectionFile = "playerCollection.json"
)

// FileStore keeps each document in its own JSON file. Every save rewrites the
// whole file through a temp file and rename.
type FileStore struct {
	dir            string
	decksFile      string
	collectionFile string
	encryption     *EncryptionConfig

	mu sync.Mutex
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithFileNames overrides the save file names. Empty names keep the default.
func WithFileNames(decks, collection string) FileStoreOption {
	return func(s *FileStore) {
		if decks != "" {
			s.decksFile = decks
		}
		if collection != "" {
			s.collectionFile = collection
		}
	}
}

// WithEncryption seals every written file. Plain files are still read.
func WithEncryption(config *EncryptionConfig) FileStoreOption {
	return func(s *FileStore) {
		s.encryption = config
	}
}

// NewFileStore creates a store rooted at dir, creating the directory if needed.
func NewFileStore(dir string, opts ...FileStoreOption) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{
		dir:            dir,
		decksFile:      DefaultDecksFile,
		collectionFile: DefaultCollectionFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DecksPath returns the absolute path of the decks file.
func (s *FileStore) DecksPath() string {
	return filepath.Join(s.dir, s.decksFile)
}

// CollectionPath returns the absolute path of the collection file.
func (s *FileStore) CollectionPath() string {
	return filepath.Join(s.dir, s.collectionFile)
}

// LoadDeckSet reads the decks file.
func (s *FileStore) LoadDeckSet(ctx context.Context) (*savefile.DeckSetDocument, error) {
	data, err := s.read(ctx, s.DecksPath())
	if err != nil {
		return nil, err
	}
	return savefile.UnmarshalDeckSet(data)
}

// SaveDeckSet overwrites the decks file.
func (s *FileStore) SaveDeckSet(ctx context.Context, doc *savefile.DeckSetDocument) error {
	data, err := savefile.MarshalDeckSet(doc)
	if err != nil {
		return err
	}
	return s.write(ctx, s.DecksPath(), data)
}

// LoadCollection reads the collection file.
func (s *FileStore) LoadCollection(ctx context.Context) (*savefile.CollectionDocument, error) {
	data, err := s.read(ctx, s.CollectionPath())
	if err != nil {
		return nil, err
	}
	return savefile.UnmarshalCollection(data)
}

// SaveCollection overwrites the collection file.
func (s *FileStore) SaveCollection(ctx context.Context, doc *savefile.CollectionDocument) error {
	data, err := savefile.MarshalCollection(doc)
	if err != nil {
		return err
	}
	return s.write(ctx, s.CollectionPath(), data)
}

// Close is a no-op; files are closed after every operation.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	plain, err := Unseal(data, s.encryption)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s: %w", path, err)
	}
	return plain, nil
}

func (s *FileStore) write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.encryption != nil {
		sealed, err := Seal(data, s.encryption)
		if err != nil {
			return fmt.Errorf("failed to encrypt %s: %w", path, err)
		}
		data = sealed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	log.Printf("[FileStore] Saved %s (%d bytes)", filepath.Base(path), len(data))
	return nil
}
