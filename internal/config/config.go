// Package config loads the voicesheet configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"voice-sheet/internal/filter"
	"voice-sheet/internal/kvstore"
	"voice-sheet/internal/voice"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Sheets  SheetsConfig  `yaml:"sheets"`
	Filter  FilterConfig  `yaml:"filter"`
	Voice   VoiceConfig   `yaml:"voice"`
	Server  ServerConfig  `yaml:"server"`
	Editor  EditorConfig  `yaml:"editor"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json

	// File receives the log while the terminal editor owns the screen.
	File string `yaml:"file"`
}

// StorageConfig selects where the modification overlay is kept between
// sessions.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type SheetsConfig struct {
	Root      string `yaml:"root"`
	OutputDir string `yaml:"output_dir"`
}

type FilterConfig struct {
	Facility int `yaml:"facility"`
	SubUnit  int `yaml:"sub_unit"`
	Crop     int `yaml:"crop"`
}

func (f FilterConfig) Columns() filter.Columns {
	return filter.Columns{Facility: f.Facility, SubUnit: f.SubUnit, Crop: f.Crop}
}

type VoiceConfig struct {
	Language string            `yaml:"language"`
	Keywords voice.Keywords    `yaml:"keywords"`
	Numerals map[string]string `yaml:"numerals"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// EditorConfig sizes the keyboard editor's visible window.
type EditorConfig struct {
	VisibleRows int `yaml:"visible_rows"`
	VisibleCols int `yaml:"visible_cols"`
}

func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{Driver: kvstore.DriverFile, Path: "data/overlay"},
		Sheets:  SheetsConfig{Root: ".", OutputDir: "."},
		Filter:  FilterConfig{Facility: 0, SubUnit: 1, Crop: 2},
		Voice: VoiceConfig{
			Language: "he-IL",
			Keywords: voice.DefaultKeywords(),
		},
		Server: ServerConfig{Addr: ":8080"},
		Editor: EditorConfig{VisibleRows: 15, VisibleCols: 7},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.sanitize()
	return cfg, nil
}

// sanitize puts empty or out-of-range values back to their defaults.
func (c *Config) sanitize() {
	def := Default()
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		c.Log.Level = def.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format != "json" {
		c.Log.Format = "text"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = def.Storage.Driver
	}
	if c.Storage.Path == "" && c.Storage.Driver != kvstore.DriverMemory {
		c.Storage.Path = def.Storage.Path
	}
	if c.Sheets.Root == "" {
		c.Sheets.Root = def.Sheets.Root
	}
	if c.Sheets.OutputDir == "" {
		c.Sheets.OutputDir = c.Sheets.Root
	}
	if c.Filter.Facility < 0 || c.Filter.SubUnit < 0 || c.Filter.Crop < 0 {
		c.Filter = def.Filter
	}
	if c.Voice.Language == "" {
		c.Voice.Language = def.Voice.Language
	}
	kw := &c.Voice.Keywords
	if len(kw.Skip) == 0 {
		kw.Skip = def.Voice.Keywords.Skip
	}
	if len(kw.Back) == 0 {
		kw.Back = def.Voice.Keywords.Back
	}
	if len(kw.Reset) == 0 {
		kw.Reset = def.Voice.Keywords.Reset
	}
	if len(kw.Save) == 0 {
		kw.Save = def.Voice.Keywords.Save
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Editor.VisibleRows <= 0 {
		c.Editor.VisibleRows = def.Editor.VisibleRows
	}
	if c.Editor.VisibleCols <= 0 {
		c.Editor.VisibleCols = def.Editor.VisibleCols
	}
}

// NewLogger builds the process logger from c.
func NewLogger(c LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if c.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
