package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aidanlsb/dbref/internal/dbref"
	"github.com/aidanlsb/dbref/internal/sqlutil"
)

// ErrDuplicateID indicates an insert whose _id already exists in the collection.
var ErrDuplicateID = errors.New("duplicate _id")

// Session is a handle to one database of a Store. It implements
// dbref.Session.
type Session struct {
	store *Store
	name  string
	path  string

	mu     sync.Mutex
	db     *sql.DB // nil until the database file exists
	closed bool
}

var _ dbref.Session = (*Session)(nil)

// Name returns the database name.
func (s *Session) Name() string {
	return s.name
}

// DB returns the underlying sql.DB for advanced queries, or nil when the
// database has not been created yet.
func (s *Session) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// conn returns the open database. Without create, a missing file yields
// (nil, nil) and nothing is written to disk.
func (s *Session) conn(ctx context.Context, create bool) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("database %s: session is closed", s.name)
	}
	if s.db != nil {
		return s.db, nil
	}
	if !create {
		if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}
	db, err := openDB(ctx, s.path)
	if err != nil {
		return nil, fmt.Errorf("database %s: %w", s.name, err)
	}
	s.db = db
	return db, nil
}

// SelectDatabase opens a separate session bound to name. Closing it does not
// affect s.
func (s *Session) SelectDatabase(ctx context.Context, name string) (dbref.Session, error) {
	sess, err := s.store.Session(ctx, name)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SelectCollection returns a handle for looking up documents of collection
// name. The handle holds a prepared statement until closed; on a database
// that does not exist yet it finds nothing.
func (s *Session) SelectCollection(ctx context.Context, name string) (dbref.Collection, error) {
	coll, err := s.Collection(ctx, name)
	if err != nil {
		return nil, err
	}
	return coll, nil
}

// Collection is SelectCollection returning the concrete type.
func (s *Session) Collection(ctx context.Context, name string) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is empty", ErrInvalidName)
	}
	db, err := s.conn(ctx, false)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return &Collection{db: s.name, name: name}, nil
	}
	stmt, err := db.PrepareContext(ctx, `SELECT body FROM documents WHERE collection = ? AND id_key = ?`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare lookup on %s.%s: %w", s.name, name, err)
	}
	return &Collection{db: s.name, name: name, stmt: stmt}, nil
}

// Insert stores doc in collection and returns its _id. A new ObjectID is
// prepended when doc has no _id.
func (s *Session) Insert(ctx context.Context, collection string, doc bson.D) (any, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: collection name is empty", ErrInvalidName)
	}

	var id any
	found := false
	for _, e := range doc {
		if e.Key == dbref.IDField {
			id, found = e.Value, true
			break
		}
	}
	if !found {
		id = primitive.NewObjectID()
		doc = append(bson.D{{Key: dbref.IDField, Value: id}}, doc...)
	}

	key, err := idKey(id)
	if err != nil {
		return nil, err
	}
	body, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	db, err := s.conn(ctx, true)
	if err != nil {
		return nil, err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO documents (collection, id_key, body, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, id_key) DO NOTHING`,
		collection, key, body, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s.%s: %w", s.name, collection, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s in %s.%s", ErrDuplicateID, key, s.name, collection)
	}
	return id, nil
}

// CollectionNames lists the collections holding at least one document.
func (s *Session) CollectionNames(ctx context.Context) ([]string, error) {
	db, err := s.conn(ctx, false)
	if err != nil || db == nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT collection FROM documents ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (string, error) {
		var name string
		err := rows.Scan(&name)
		return name, err
	})
}

// Close closes the database handle. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.store.open.Add(-1)
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Collection is a handle to one collection. It implements dbref.Collection.
type Collection struct {
	db   string
	name string
	stmt *sql.Stmt // nil when the database does not exist
}

// ErrUnsupportedFilter indicates a filter other than {_id: value}.
var ErrUnsupportedFilter = errors.New("only {_id: value} filters are supported")

// FindOne returns the document whose _id equals the filter's _id, or nil.
func (c *Collection) FindOne(ctx context.Context, filter bson.D) (bson.D, error) {
	if len(filter) != 1 || filter[0].Key != dbref.IDField {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFilter, filter)
	}
	key, err := idKey(filter[0].Value)
	if err != nil {
		return nil, err
	}
	if c.stmt == nil {
		return nil, nil
	}

	var body []byte
	err = c.stmt.QueryRowContext(ctx, c.name, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.%s: %w", c.db, c.name, err)
	}

	var doc bson.D
	if err := bson.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document in %s.%s: %w", c.db, c.name, err)
	}
	return doc, nil
}

// Close releases the prepared statement.
func (c *Collection) Close() error {
	if c.stmt == nil {
		return nil
	}
	return c.stmt.Close()
}
