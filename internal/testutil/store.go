package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/aidanlsb/dbref/internal/docstore"
)

// TestStore is a temporary SQLite document store for CLI tests.
type TestStore struct {
	t *testing.T

	// Root is the store directory.
	Root string
	// Database is the database commands are bound to unless they pass -d.
	Database string

	seeds []seed
}

type seed struct {
	database   string
	collection string
	doc        bson.D
}

// NewTestStore creates a store under t.TempDir() bound to database "A".
func NewTestStore(t *testing.T) *TestStore {
	t.Helper()
	return &TestStore{
		t:        t,
		Root:     filepath.Join(t.TempDir(), "data"),
		Database: "A",
	}
}

// WithDocument queues doc for insertion into database.collection.
func (s *TestStore) WithDocument(database, collection string, doc bson.D) *TestStore {
	s.seeds = append(s.seeds, seed{database: database, collection: collection, doc: doc})
	return s
}

// Build writes the queued documents.
func (s *TestStore) Build() *TestStore {
	s.t.Helper()

	store, err := docstore.Open(s.Root)
	if err != nil {
		s.t.Fatalf("failed to open store: %v", err)
	}
	ctx := context.Background()
	for _, sd := range s.seeds {
		session, err := store.Session(ctx, sd.database)
		if err != nil {
			s.t.Fatalf("failed to open %s: %v", sd.database, err)
		}
		if _, err := session.Insert(ctx, sd.collection, sd.doc); err != nil {
			_ = session.Close()
			s.t.Fatalf("failed to seed %s.%s: %v", sd.database, sd.collection, err)
		}
		if err := session.Close(); err != nil {
			s.t.Fatalf("failed to close %s: %v", sd.database, err)
		}
	}
	s.seeds = nil
	return s
}

// Databases lists the database files present under Root.
func (s *TestStore) Databases() []string {
	s.t.Helper()
	store, err := docstore.Open(s.Root)
	if err != nil {
		s.t.Fatalf("failed to open store: %v", err)
	}
	names, err := store.Databases()
	if err != nil {
		s.t.Fatalf("failed to list databases: %v", err)
	}
	return names
}
