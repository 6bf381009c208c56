package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSettingNotFound is returned when a key has never been set.
var ErrSettingNotFound = errors.New("setting not found")

// Well-known setting keys.
const (
	SettingSelectedDeck      = "selected_deck_id"
	SettingCollectionSaved   = "collection_saved"
	SettingDeckSetSaved      = "deck_set_saved"
	SettingSaveFormatVersion = "save_format_version"
)

// SettingsRepository provides access to key/value settings.
type SettingsRepository interface {
	// Get retrieves the JSON-encoded value of a setting.
	Get(ctx context.Context, key string) (string, error)

	// GetTyped retrieves a setting and unmarshals it into target.
	GetTyped(ctx context.Context, key string, target interface{}) error

	// Set stores a setting value, JSON-encoded.
	Set(ctx context.Context, key string, value interface{}) error

	// Delete removes a setting.
	Delete(ctx context.Context, key string) error
}

type settingsRepository struct {
	db DBTX
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db DBTX) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get retrieves a setting value by key.
func (r *settingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrSettingNotFound, key)
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// GetTyped retrieves a setting and unmarshals it to the target type.
func (r *settingsRepository) GetTyped(ctx context.Context, key string, target interface{}) error {
	value, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("failed to unmarshal setting %s: %w", key, err)
	}
	return nil
}

// Set stores a setting value.
func (r *settingsRepository) Set(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %s: %w", key, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(jsonValue), time.Now())
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// Delete removes a setting.
func (r *settingsRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
