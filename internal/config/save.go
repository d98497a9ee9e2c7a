package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type persistedConfig struct {
	Backend         *string              `toml:"backend,omitempty"`
	DefaultDatabase *string              `toml:"default_database,omitempty"`
	LogLevel        *string              `toml:"log_level,omitempty"`
	LogFile         *string              `toml:"log_file,omitempty"`
	SQLite          *persistedSQLite     `toml:"sqlite,omitempty"`
	Mongo           *persistedMongo      `toml:"mongo,omitempty"`
	UI              *persistedUISettings `toml:"ui,omitempty"`
}

type persistedSQLite struct {
	Root *string `toml:"root,omitempty"`
}

type persistedMongo struct {
	URI *string `toml:"uri,omitempty"`
}

type persistedUISettings struct {
	Accent *string `toml:"accent,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveTo writes the config to path atomically. Empty values are omitted.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		Backend:         nonEmptyPtr(cfg.Backend),
		DefaultDatabase: nonEmptyPtr(cfg.DefaultDatabase),
		LogLevel:        nonEmptyPtr(cfg.LogLevel),
		LogFile:         nonEmptyPtr(cfg.LogFile),
	}
	if root := nonEmptyPtr(cfg.SQLite.Root); root != nil {
		out.SQLite = &persistedSQLite{Root: root}
	}
	if uri := nonEmptyPtr(cfg.Mongo.URI); uri != nil {
		out.Mongo = &persistedMongo{URI: uri}
	}
	if accent := nonEmptyPtr(cfg.UI.Accent); accent != nil {
		out.UI = &persistedUISettings{Accent: accent}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return writeConfigFile(path, buf.Bytes())
}
