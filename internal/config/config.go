// Package config handles global dbref configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Supported backends.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config represents the global dbref configuration.
type Config struct {
	// Backend selects the document store: "sqlite" (default) or "mongo".
	Backend string `toml:"backend"`

	// DefaultDatabase is the database sessions are bound to when no
	// --database flag is given.
	DefaultDatabase string `toml:"default_database"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFile, when set, receives logs in addition to stderr (rotated).
	LogFile string `toml:"log_file"`

	SQLite SQLiteConfig `toml:"sqlite"`
	Mongo  MongoConfig  `toml:"mongo"`
	UI     UIConfig     `toml:"ui"`
}

// SQLiteConfig configures the embedded store.
type SQLiteConfig struct {
	// Root is the directory holding one <name>.db file per database.
	Root string `toml:"root"`
}

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI string `toml:"uri"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an ANSI color code ("0" to "255") or hex color ("#RRGGBB").
	Accent string `toml:"accent"`
}

// GetBackend returns the configured backend, defaulting to sqlite.
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// Database returns the database to bind sessions to. An explicit name wins
// over default_database.
func (c *Config) Database(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if c.DefaultDatabase != "" {
		return c.DefaultDatabase, nil
	}
	return "", fmt.Errorf("no database specified and no default_database configured")
}

// GetSQLiteRoot returns the SQLite store root, defaulting to a directory
// next to the default config file.
func (c *Config) GetSQLiteRoot() string {
	if c.SQLite.Root != "" {
		return ExpandPath(c.SQLite.Root)
	}
	return filepath.Join(filepath.Dir(DefaultPath()), "data")
}

// GetMongoURI returns the MongoDB URI, defaulting to localhost.
func (c *Config) GetMongoURI() string {
	if c.Mongo.URI != "" {
		return c.Mongo.URI
	}
	return "mongodb://localhost:27017"
}

// Validate checks that configured values are usable.
func (c *Config) Validate() error {
	switch c.GetBackend() {
	case BackendSQLite, BackendMongo:
	default:
		return fmt.Errorf("unknown backend %q (expected %q or %q)", c.Backend, BackendSQLite, BackendMongo)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a log level name to a slog.Level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

// DefaultPath returns the default config file path.
// Checks ~/.config/dbref/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "dbref", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "dbref", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

const defaultConfig = `# dbref configuration

# Document store backend: "sqlite" or "mongo"
# backend = "sqlite"

# Database used when --database is not given
# default_database = "app"

# Logging
# log_level = "info"
# log_file = "~/.local/state/dbref/dbref.log"

# [sqlite]
# root = "/path/to/databases"

# [mongo]
# uri = "mongodb://localhost:27017"

# [ui]
# accent = "39"
`

// CreateDefault creates a commented default config file at path if it
// doesn't exist. An empty path means DefaultPath().
func CreateDefault(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil // Already exists
	}

	if err := writeConfigFile(path, []byte(defaultConfig)); err != nil {
		return "", err
	}

	return path, nil
}

// ExpandPath expands a leading ~ in p to the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
