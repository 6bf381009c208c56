// Package main runs the deck keeper REST API: it loads the card catalog and
// the player's saved decks and collection, then serves them over HTTP with
// live event push on /ws.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ramonehamilton/deckkeeper/internal/api"
	"github.com/ramonehamilton/deckkeeper/internal/cards"
	"github.com/ramonehamilton/deckkeeper/internal/config"
	"github.com/ramonehamilton/deckkeeper/internal/deckmanager"
	"github.com/ramonehamilton/deckkeeper/internal/events"
	"github.com/ramonehamilton/deckkeeper/internal/storage"
	"github.com/ramonehamilton/deckkeeper/internal/storage/repository"
	"github.com/ramonehamilton/deckkeeper/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file (default: ~/.deckkeeper/config.toml)")
	port       = flag.Int("port", 0, "API server port (overrides config)")
	debug      = flag.Bool("debug", false, "Enable debug logging and event logs")
)

func main() {
	flag.Parse()

	fmt.Printf("Deck Keeper - REST API Server %s\n", version.Get())
	fmt.Println("=============================")
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var db *storage.DB
	if cfg.UsesSQLite() {
		path := cfg.GetSQLitePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
		fmt.Printf("Database: %s\n", path)

		db, err = storage.Open(storage.DefaultConfig(path))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()
	}

	store, err := openStore(cfg, db)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	ctx := context.Background()

	if cfg.Storage.BackupOnStart {
		backups := storage.NewBackupManager(store, cfg.GetBackupDir(), cfg.Storage.BackupKeep)
		if cfg.Storage.EncryptionPassword != "" {
			backups.SetEncryption(storage.DefaultEncryptionConfig(cfg.Storage.EncryptionPassword))
		}
		if path, err := backups.Backup(ctx); err != nil {
			log.Printf("Warning: backup before load failed: %v", err)
		} else if path != "" {
			fmt.Printf("Backup: %s\n", path)
		}
	}

	catalog, err := loadCatalog(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to load card catalog: %v", err)
	}

	dispatcher := events.NewEventDispatcher()
	if cfg.App.DebugMode {
		dispatcher.Register(events.NewLogObserver())
	}

	manager := deckmanager.New(catalog,
		deckmanager.WithStore(store),
		deckmanager.WithDispatcher(dispatcher),
		deckmanager.WithDefaultCopies(cfg.Collection.DefaultCopies),
		deckmanager.WithDebug(cfg.App.DebugMode),
	)

	result, err := manager.Load(ctx)
	if err != nil {
		// Load already reset whatever it could not read.
		log.Printf("Warning: some saved data could not be loaded: %v", err)
	}
	fmt.Printf("Loaded %d cards, %d decks", catalog.Len(), result.Decks)
	if result.Seeded {
		fmt.Printf(" (new collection with %d copies of every card)", cfg.Collection.DefaultCopies)
	}
	fmt.Println()

	timeout, _ := cfg.GetAPITimeout()
	server := api.NewServer(&api.Config{
		Port:      cfg.API.Port,
		RateLimit: cfg.API.RateLimit,
		RateBurst: cfg.API.RateBurst,
		Timeout:   timeout,
	}, manager)
	dispatcher.Register(server.NewWebSocketObserver())

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at http://localhost:%d\n", cfg.API.Port)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if err := manager.Save(shutdownCtx); err != nil {
		log.Printf("Error saving on shutdown: %v", err)
	}

	fmt.Println("API server stopped.")
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if *port != 0 {
		cfg.API.Port = *port
	}
	if *debug {
		cfg.App.DebugMode = true
	}
	return cfg, cfg.Validate()
}

// openStore picks the save backend. The SQLite store shares db, which the
// caller closes.
func openStore(cfg *config.Config, db *storage.DB) (storage.Store, error) {
	if cfg.Storage.Backend == config.BackendSQLite {
		return storage.NewSQLStore(db), nil
	}

	opts := []storage.FileStoreOption{
		storage.WithFileNames(cfg.Storage.DecksFile, cfg.Storage.CollectionFile),
	}
	if cfg.Storage.EncryptionPassword != "" {
		opts = append(opts, storage.WithEncryption(storage.DefaultEncryptionConfig(cfg.Storage.EncryptionPassword)))
		fmt.Println("Save files: encrypted")
	}
	fmt.Printf("Save files: %s\n", cfg.Storage.DataDir)
	return storage.NewFileStore(cfg.Storage.DataDir, opts...)
}

func loadCatalog(ctx context.Context, cfg *config.Config, db *storage.DB) (*cards.Catalog, error) {
	var loader cards.Loader
	if cfg.Catalog.Source == config.BackendSQLite {
		loader = repository.NewCardRepository(db.Conn())
	} else {
		loader = cards.NewFileLoader(cfg.Catalog.CardsFile)
	}
	return cards.LoadCatalog(ctx, loader)
}
