// Package mongostore adapts the MongoDB driver to dbref sessions.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aidanlsb/dbref/internal/dbref"
)

// Session is bound to one database of a MongoDB deployment. The session
// returned by Connect owns the client; sessions from SelectDatabase share it.
type Session struct {
	client *mongo.Client
	db     *mongo.Database
	owner  bool
}

var _ dbref.Session = (*Session)(nil)

// Connect connects to uri and returns a session bound to database.
func Connect(ctx context.Context, uri, database string, opts ...*options.ClientOptions) (*Session, error) {
	if database == "" {
		return nil, fmt.Errorf("database name is required")
	}
	opts = append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, opts...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", uri, err)
	}
	return &Session{client: client, db: client.Database(database), owner: true}, nil
}

// Name returns the database name.
func (s *Session) Name() string {
	return s.db.Name()
}

// Database returns the underlying driver handle.
func (s *Session) Database() *mongo.Database {
	return s.db
}

// SelectDatabase returns a session on name sharing this session's client.
func (s *Session) SelectDatabase(ctx context.Context, name string) (dbref.Session, error) {
	if name == "" {
		return nil, fmt.Errorf("database name is required")
	}
	return &Session{client: s.client, db: s.client.Database(name)}, nil
}

// SelectCollection returns a handle on collection name.
func (s *Session) SelectCollection(ctx context.Context, name string) (dbref.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	return &Collection{coll: s.db.Collection(name)}, nil
}

// Insert stores doc in collection and returns its _id, assigning a new
// ObjectID when doc has none.
func (s *Session) Insert(ctx context.Context, collection string, doc bson.D) (any, error) {
	hasID := false
	for _, e := range doc {
		if e.Key == dbref.IDField {
			hasID = true
			break
		}
	}
	if !hasID {
		doc = append(bson.D{{Key: dbref.IDField, Value: primitive.NewObjectID()}}, doc...)
	}

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s.%s: %w", s.Name(), collection, err)
	}
	return res.InsertedID, nil
}

// CollectionNames lists the collections of the database.
func (s *Session) CollectionNames(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// Close disconnects the client if this session owns it. Sessions from
// SelectDatabase only drop their database handle.
func (s *Session) Close() error {
	if !s.owner {
		return nil
	}
	s.owner = false
	return s.client.Disconnect(context.Background())
}

// Collection implements dbref.Collection over a driver collection.
type Collection struct {
	coll *mongo.Collection
}

// FindOne runs filter and returns the first match, or nil.
func (c *Collection) FindOne(ctx context.Context, filter bson.D) (bson.D, error) {
	var doc bson.D
	err := c.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Close is a no-op; driver collection handles hold no resources.
func (c *Collection) Close() error {
	return nil
}
