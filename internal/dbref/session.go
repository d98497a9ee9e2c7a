package dbref

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Session is a handle bound to one database.
type Session interface {
	// Name returns the database the session is bound to.
	Name() string
	// SelectDatabase returns a new session bound to name. The caller owns
	// the returned session and must Close it.
	SelectDatabase(ctx context.Context, name string) (Session, error)
	// SelectCollection returns a handle to a collection of this database.
	// The caller must Close it.
	SelectCollection(ctx context.Context, name string) (Collection, error)
	Close() error
}

// Collection is a handle to a named collection.
type Collection interface {
	// FindOne returns the first document matching filter, or nil if there
	// is none.
	FindOne(ctx context.Context, filter bson.D) (bson.D, error)
	Close() error
}
