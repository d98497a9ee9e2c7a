// Package docstore is an embedded document store on SQLite. Each database
// is a separate SQLite file under a root directory; documents are stored as
// BSON and keyed by collection and _id.
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// FileExt is the extension of database files under the store root.
const FileExt = ".db"

// CurrentDBVersion is the current database schema version.
const CurrentDBVersion = 1

var (
	// ErrInvalidName indicates a database or collection name that cannot be used.
	ErrInvalidName = errors.New("invalid name")
	// ErrIncompatibleSchema indicates a database file written by a different schema version.
	ErrIncompatibleSchema = errors.New("incompatible database schema")
)

// Store is a directory of databases.
type Store struct {
	root string
	open atomic.Int64
}

// Open opens or creates a store rooted at root.
func Open(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("store root is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// OpenSessions returns the number of sessions opened and not yet closed.
func (s *Store) OpenSessions() int {
	return int(s.open.Load())
}

// Path returns the file backing database name.
func (s *Store) Path(name string) (string, error) {
	if err := validateDatabaseName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, name+FileExt), nil
}

// Databases lists the databases present under the store root.
func (s *Store) Databases() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), FileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Session opens a session bound to database name. A database that does not
// exist yet is not created here: reads through the session find nothing,
// and the first Insert creates the file. The caller must Close it.
func (s *Store) Session(ctx context.Context, name string) (*Session, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	sess := &Session{store: s, name: name, path: path}
	if _, err := sess.conn(ctx, false); err != nil {
		return nil, err
	}
	s.open.Add(1)
	return sess, nil
}

// openDB opens the file at path and brings its schema up to date.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initialize(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func validateDatabaseName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidName)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`+"\x00") {
		return fmt.Errorf("%w: database name %q", ErrInvalidName, name)
	}
	return nil
}

func initialize(ctx context.Context, db *sql.DB) error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		-- id_key is the canonical extended JSON of the _id value
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id_key TEXT NOT NULL,
			body BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (collection, id_key)
		);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	var version string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('version', ?)`,
			fmt.Sprintf("%d", CurrentDBVersion))
		if err != nil {
			return fmt.Errorf("failed to set database version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read database version: %w", err)
	case version != fmt.Sprintf("%d", CurrentDBVersion):
		return fmt.Errorf("%w: version %s, want %d", ErrIncompatibleSchema, version, CurrentDBVersion)
	}
	return nil
}
