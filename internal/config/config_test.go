package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"voice-sheet/internal/kvstore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voicesheet.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesAndSanitizes(t *testing.T) {
	path := writeConfig(t, `
log:
  level: loud
  format: JSON
storage:
  driver: sqlite
  path: /tmp/overlay.db
sheets:
  root: /srv/sheets
filter:
  facility: 1
  sub_unit: 2
  crop: 4
voice:
  keywords:
    skip: [next, skip]
  numerals:
    dozen: "12"
editor:
  visible_rows: -3
  visible_cols: 9
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
	if cfg.Storage.Driver != kvstore.DriverSQLite || cfg.Storage.Path != "/tmp/overlay.db" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Sheets.OutputDir != "/srv/sheets" {
		t.Fatalf("output dir should default to root, got %q", cfg.Sheets.OutputDir)
	}
	if got := cfg.Filter.Columns(); got.Facility != 1 || got.SubUnit != 2 || got.Crop != 4 {
		t.Fatalf("unexpected filter columns %+v", got)
	}
	if diff := cmp.Diff([]string{"next", "skip"}, cfg.Voice.Keywords.Skip); diff != "" {
		t.Fatalf("skip keywords (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Default().Voice.Keywords.Back, cfg.Voice.Keywords.Back); diff != "" {
		t.Fatalf("back keywords should keep defaults (-want +got):\n%s", diff)
	}
	if cfg.Voice.Numerals["dozen"] != "12" {
		t.Fatalf("numerals not loaded: %v", cfg.Voice.Numerals)
	}
	if cfg.Editor.VisibleRows != 15 || cfg.Editor.VisibleCols != 9 {
		t.Fatalf("unexpected editor config %+v", cfg.Editor)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
}

func TestLoadNegativeFilterColumns(t *testing.T) {
	cfg, err := Load(writeConfig(t, "filter:\n  facility: -1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Filter != Default().Filter {
		t.Fatalf("expected default filter columns, got %+v", cfg.Filter)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "log: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewLogger(t *testing.T) {
	log := NewLogger(LogConfig{Level: "debug", Format: "json"})
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected JSON formatter, got %T", log.Formatter)
	}
}
