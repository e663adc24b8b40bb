package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	tables := []string{"rigs", "role_overrides", "tuning_profiles", "settings"}
	for _, table := range tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s was not created: %v", table, err)
		}
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetSetting("active_rig"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSetting(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.SetSetting("active_rig", "rig-1"); err != nil {
		t.Fatalf("SetSetting() failed: %v", err)
	}
	if err := s.SetSetting("active_rig", "rig-2"); err != nil {
		t.Fatalf("SetSetting() upsert failed: %v", err)
	}

	value, err := s.GetSetting("active_rig")
	if err != nil {
		t.Fatalf("GetSetting() failed: %v", err)
	}
	if value != "rig-2" {
		t.Errorf("GetSetting() = %q, want rig-2", value)
	}
}
