package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Storage backends and catalog sources.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	// Where decks and the collection are saved
	Storage StorageConfig `toml:"storage"`

	// Where card definitions come from
	Catalog CatalogConfig `toml:"catalog"`

	// First-run collection seeding
	Collection CollectionConfig `toml:"collection"`

	// HTTP API server
	API APIConfig `toml:"api"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// StorageConfig contains save-file settings.
type StorageConfig struct {
	Backend        string `toml:"backend" env:"DECKKEEPER_STORAGE_BACKEND"` // "file" or "sqlite"
	DataDir        string `toml:"data_dir" env:"DECKKEEPER_DATA_DIR"`       // Directory for save files
	DecksFile      string `toml:"decks_file"`                               // Deck set file name
	CollectionFile string `toml:"collection_file"`                          // Collection file name
	SQLitePath     string `toml:"sqlite_path" env:"DECKKEEPER_SQLITE_PATH"` // Empty means <data_dir>/deckkeeper.db
	BackupOnStart  bool   `toml:"backup_on_start"`                          // Snapshot saves before loading them
	BackupKeep     int    `toml:"backup_keep"`                              // Backups to retain, 0 keeps all

	// EncryptionPassword enables encrypted save files. Never written to disk.
	EncryptionPassword string `toml:"-" env:"DECKKEEPER_ENCRYPTION_PASSWORD"`
}

// CatalogConfig contains card catalog settings.
type CatalogConfig struct {
	Source    string `toml:"source" env:"DECKKEEPER_CATALOG_SOURCE"` // "file" or "sqlite"
	CardsFile string `toml:"cards_file" env:"DECKKEEPER_CARDS_FILE"` // Authoring or normalized JSON file
}

// CollectionConfig contains collection settings.
type CollectionConfig struct {
	DefaultCopies int `toml:"default_copies" env:"DECKKEEPER_DEFAULT_COPIES"` // Copies of every card granted on first run
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port      int     `toml:"port" env:"DECKKEEPER_API_PORT"`
	RateLimit float64 `toml:"rate_limit" env:"DECKKEEPER_API_RATE_LIMIT"` // Requests per second, 0 disables
	RateBurst int     `toml:"rate_burst"`
	Timeout   string  `toml:"timeout"` // Per-request timeout (e.g., "30s")
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode" env:"DECKKEEPER_DEBUG"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir, err := DefaultDir()
	if err != nil {
		dir = ".deckkeeper"
	}

	return &Config{
		Storage: StorageConfig{
			Backend:        BackendFile,
			DataDir:        dir,
			DecksFile:      "userDecks.json",
			CollectionFile: "playerCollection.json",
			BackupOnStart:  true,
			BackupKeep:     10,
		},
		Catalog: CatalogConfig{
			Source:    BackendFile,
			CardsFile: filepath.Join(dir, "cards.json"),
		},
		Collection: CollectionConfig{
			DefaultCopies: 2,
		},
		API: APIConfig{
			Port:      8080,
			RateLimit: 50,
			RateBurst: 100,
			Timeout:   "30s",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// DefaultDir returns ~/.deckkeeper.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".deckkeeper"), nil
}

// DefaultPath returns the path to the default configuration file.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path, then applies environment
// overrides. A missing file yields the defaults. Keys absent from the file
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from DECKKEEPER_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo saves the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Storage.Backend != BackendFile && c.Storage.Backend != BackendSQLite {
		return fmt.Errorf("invalid storage backend %q", c.Storage.Backend)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if c.Storage.Backend == BackendFile && (c.Storage.DecksFile == "" || c.Storage.CollectionFile == "") {
		return fmt.Errorf("file backend needs both decks_file and collection_file")
	}

	if c.Storage.BackupKeep < 0 {
		return fmt.Errorf("backup keep cannot be negative: %d", c.Storage.BackupKeep)
	}

	if c.Catalog.Source != BackendFile && c.Catalog.Source != BackendSQLite {
		return fmt.Errorf("invalid catalog source %q", c.Catalog.Source)
	}
	if c.Catalog.Source == BackendFile && c.Catalog.CardsFile == "" {
		return fmt.Errorf("catalog source %q needs cards_file", BackendFile)
	}

	if c.Collection.DefaultCopies < 0 {
		return fmt.Errorf("default copies cannot be negative: %d", c.Collection.DefaultCopies)
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port %d", c.API.Port)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %v", c.API.RateLimit)
	}
	if c.API.RateLimit > 0 && c.API.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive when rate limiting is enabled")
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("invalid API timeout %q: %w", c.API.Timeout, err)
	}

	return nil
}

// GetAPITimeout returns the API request timeout as a duration.
func (c *Config) GetAPITimeout() (time.Duration, error) {
	return time.ParseDuration(c.API.Timeout)
}

// GetSQLitePath returns the SQLite database path, defaulting to the data dir.
func (c *Config) GetSQLitePath() string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(c.Storage.DataDir, "deckkeeper.db")
}

// GetBackupDir returns the directory backups are written to.
func (c *Config) GetBackupDir() string {
	return filepath.Join(c.Storage.DataDir, "backups")
}

// UsesSQLite reports whether any component needs the SQLite database.
func (c *Config) UsesSQLite() bool {
	return c.Storage.Backend == BackendSQLite || c.Catalog.Source == BackendSQLite
}
