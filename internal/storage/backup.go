package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ramonehamilton/deckkeeper/internal/savefile"
)

const (
	backupPrefix     = "backup_"
	backupExt        = ".json"
	backupTimeFormat = "20060102_150405.000000"
)

// Backup is a snapshot of both save documents. Either may be nil when it
// had never been saved.
type Backup struct {
	CreatedAt  time.Time                    `json:"createdAt"`
	Decks      *savefile.DeckSetDocument    `json:"decks,omitempty"`
	Collection *savefile.CollectionDocument `json:"collection,omitempty"`
}

// BackupInfo contains information about a backup file.
type BackupInfo struct {
	Path     string
	Name     string
	Size     int64
	ModTime  time.Time
	Checksum string
}

// BackupManager snapshots whatever a Store holds into timestamped JSON files
// and restores them. It works the same for every backend.
type BackupManager struct {
	store      Store
	dir        string
	keep       int
	encryption *EncryptionConfig
}

// NewBackupManager creates a backup manager writing to dir. keep limits how
// many backups are retained; 0 keeps all of them.
func NewBackupManager(store Store, dir string, keep int) *BackupManager {
	return &BackupManager{store: store, dir: dir, keep: keep}
}

// SetEncryption seals backup files written from now on. Restore reads both
// sealed and plain backups.
func (bm *BackupManager) SetEncryption(config *EncryptionConfig) {
	bm.encryption = config
}

// Dir returns the backup directory.
func (bm *BackupManager) Dir() string {
	return bm.dir
}

// Backup writes a snapshot and returns its path. When the store holds
// nothing yet, no file is written and the path is empty.
func (bm *BackupManager) Backup(ctx context.Context) (string, error) {
	snapshot := Backup{CreatedAt: time.Now().UTC()}

	decks, err := bm.store.LoadDeckSet(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("failed to read decks for backup: %w", err)
	}
	snapshot.Decks = decks

	coll, err := bm.store.LoadCollection(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("failed to read collection for backup: %w", err)
	}
	snapshot.Collection = coll

	if snapshot.Decks == nil && snapshot.Collection == nil {
		return "", nil
	}

	if err := os.MkdirAll(bm.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup: %w", err)
	}
	if bm.encryption != nil {
		if data, err = Seal(data, bm.encryption); err != nil {
			return "", fmt.Errorf("failed to encrypt backup: %w", err)
		}
	}

	name := backupPrefix + snapshot.CreatedAt.Format(backupTimeFormat) + backupExt
	path := filepath.Join(bm.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	log.Printf("[Backup] Wrote %s", path)

	if err := bm.prune(); err != nil {
		log.Printf("[Backup] Failed to prune old backups: %v", err)
	}
	return path, nil
}

// Restore writes the documents from a backup file back into the store.
// Documents missing from the backup are left untouched.
func (bm *BackupManager) Restore(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if data, err = Unseal(data, bm.encryption); err != nil {
		return fmt.Errorf("failed to decrypt backup: %w", err)
	}

	var snapshot Backup
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}
	if snapshot.Decks == nil && snapshot.Collection == nil {
		return fmt.Errorf("backup %s holds no documents", filepath.Base(path))
	}

	if snapshot.Decks != nil {
		if err := bm.store.SaveDeckSet(ctx, snapshot.Decks); err != nil {
			return fmt.Errorf("failed to restore decks: %w", err)
		}
	}
	if snapshot.Collection != nil {
		if err := bm.store.SaveCollection(ctx, snapshot.Collection); err != nil {
			return fmt.Errorf("failed to restore collection: %w", err)
		}
	}

	log.Printf("[Backup] Restored %s", path)
	return nil
}

// ListBackups returns every backup, newest first.
func (bm *BackupManager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || filepath.Ext(name) != backupExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(bm.dir, name)
		checksum, err := calculateChecksum(path)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:     path,
			Name:     name,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Checksum: checksum,
		})
	}

	// Names embed the timestamp, so they sort chronologically.
	sort.Slice(backups, func(i, j int) bool { return backups[i].Name > backups[j].Name })
	return backups, nil
}

func (bm *BackupManager) prune() error {
	if bm.keep <= 0 {
		return nil
	}
	backups, err := bm.ListBackups()
	if err != nil {
		return err
	}
	for _, b := range backups[min(bm.keep, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			return err
		}
	}
	return nil
}

// calculateChecksum calculates the SHA-256 checksum of a file.
func calculateChecksum(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
