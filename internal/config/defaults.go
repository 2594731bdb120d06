package config

import (
	"os"
	"path/filepath"

	"website-cleaner/internal/domain"
)

// MaxThreads caps the worker pool size a user may configure.
const MaxThreads = 16

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		NumThreads:     4,
		ChunkSize:      20000,
		OutputDir:      filepath.Join(homeDir, "Documents", "Cleaned"),
		OutputBaseName: "cleaned_output",
		OutputFormat:   "csv",
		TitleAliases:   []string{"title", "titel", "titulo", "заголовок", "titolo"},
		WebsiteAliases: []string{"website", "web", "url", "site", "homepage"},
	}
}
