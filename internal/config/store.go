package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"website-cleaner/internal/domain"
)

// Store defines persistence operations for app settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
}

// JSONStore persists settings in a single JSON file on disk.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed settings store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads settings from disk or returns defaults when missing.
// Unset numeric fields are backfilled so old settings files keep working.
func (s *JSONStore) Load() (domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}

		return domain.Settings{}, err
	}

	var cfg domain.Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.Settings{}, err
	}

	return normalize(cfg), nil
}

// Save writes settings as indented JSON and creates parent directories.
func (s *JSONStore) Save(cfg domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(normalize(cfg), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}

// normalize fills zero values with defaults and clamps the thread count.
func normalize(cfg domain.Settings) domain.Settings {
	def := DefaultSettings()

	if cfg.NumThreads < 1 {
		cfg.NumThreads = def.NumThreads
	}
	if cfg.NumThreads > MaxThreads {
		cfg.NumThreads = MaxThreads
	}
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.OutputBaseName == "" {
		cfg.OutputBaseName = def.OutputBaseName
	}
	if cfg.OutputFormat != "csv" && cfg.OutputFormat != "xlsx" {
		cfg.OutputFormat = def.OutputFormat
	}
	if len(cfg.TitleAliases) == 0 {
		cfg.TitleAliases = def.TitleAliases
	}
	if len(cfg.WebsiteAliases) == 0 {
		cfg.WebsiteAliases = def.WebsiteAliases
	}

	return cfg
}
