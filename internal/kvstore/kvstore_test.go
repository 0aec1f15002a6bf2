package kvstore

import (
	"errors"
	"path/filepath"
	"testing"
)

func openAll(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := Open(DriverFile, filepath.Join(dir, "kv"))
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	sqliteStore, err := Open(DriverSQLite, filepath.Join(dir, "kv.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		Close(fileStore)
		Close(sqliteStore)
	})

	return map[string]Store{
		DriverMemory: NewMemory(),
		DriverFile:   fileStore,
		DriverSQLite: sqliteStore,
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get("missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v; want not found", ok, err)
			}

			key := "voicesheet:changes:file.xlsx/גיליון1"
			if err := s.Set(key, `{"1-2":{}}`); err != nil {
				t.Fatalf("Set: %v", err)
			}
			v, ok, err := s.Get(key)
			if err != nil || !ok || v != `{"1-2":{}}` {
				t.Fatalf("Get = %q, %v, %v", v, ok, err)
			}

			// Last write wins.
			if err := s.Set(key, "second"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if v, _, _ := s.Get(key); v != "second" {
				t.Fatalf("expected overwritten value, got %q", v)
			}

			if err := s.Remove(key); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if _, ok, _ := s.Get(key); ok {
				t.Fatal("expected key to be gone after Remove")
			}
			// Removing a missing key is not an error.
			if err := s.Remove(key); err != nil {
				t.Fatalf("Remove(missing): %v", err)
			}
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	a.Close()

	b, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if v, ok, err := b.Get("k"); err != nil || !ok || v != "v" {
		t.Fatalf("reopened Get = %q, %v, %v", v, ok, err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("redis", ""); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
	if _, err := Open(DriverFile, ""); err == nil {
		t.Fatal("expected error for empty file store dir")
	}
}
