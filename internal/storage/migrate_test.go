package storage

import (
	"path/filepath"
	"testing"
)

func TestMigrationManager_UpDownVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("failed to create migration manager: %v", err)
	}
	defer func() {
		_ = mgr.Close()
	}()

	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("expected fresh database at version 0, got %d (dirty=%v)", version, dirty)
	}

	if err := mgr.Up(); err != nil {
		t.Fatalf("failed to migrate up: %v", err)
	}
	// Second Up is a no-op.
	if err := mgr.Up(); err != nil {
		t.Fatalf("expected idempotent Up, got %v", err)
	}

	version, dirty, err = mgr.Version()
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("expected version 1, got %d (dirty=%v)", version, dirty)
	}

	if err := mgr.Down(); err != nil {
		t.Fatalf("failed to migrate down: %v", err)
	}
	version, _, err = mgr.Version()
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 after Down, got %d", version)
	}
}

func TestMigrate_Twice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "twice.db")
	if err := Migrate(dbPath); err != nil {
		t.Fatalf("first migrate failed: %v", err)
	}
	if err := Migrate(dbPath); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}
