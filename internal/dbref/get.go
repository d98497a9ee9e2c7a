package dbref

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
)

// Resolver fetches the documents references point at. The zero value is
// ready to use and is safe for concurrent use.
type Resolver struct {
	Logger *slog.Logger
}

// NewResolver returns a Resolver logging to logger.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{Logger: logger}
}

// Get resolves ref with a zero Resolver.
func Get(ctx context.Context, s Session, ref any) (bson.D, error) {
	var r Resolver
	return r.Get(ctx, s, ref)
}

// Get fetches the document ref points at, starting from session s.
//
// It returns (nil, nil) when ref is not a reference at all and when no
// document matches. A $ref or $db that is present but not a string is an
// *Error and no collaborator is called. When $db names another database a
// session for it is opened and closed again before Get returns; s itself is
// never modified.
func (r *Resolver) Get(ctx context.Context, s Session, ref any) (doc bson.D, err error) {
	if isScalar(ref) {
		return nil, nil
	}
	ns, found, _ := lookup(ref, KeyRef)
	if !found {
		return nil, nil
	}
	id, found, _ := lookup(ref, KeyID)
	if !found {
		return nil, nil
	}

	collection, ok := ns.(string)
	if !ok {
		return nil, &Error{
			Op:     "get",
			Kind:   KindInvalidRefType,
			Code:   CodeInvalidRefType,
			Err:    ErrInvalidRefType,
			Detail: fmt.Sprintf("got %T", ns),
		}
	}

	active := s
	if v, found, _ := lookup(ref, KeyDB); found {
		dbName, ok := v.(string)
		if !ok {
			return nil, &Error{
				Op:     "get",
				Kind:   KindInvalidDBType,
				Code:   CodeInvalidDBType,
				Err:    ErrInvalidDBType,
				Detail: fmt.Sprintf("got %T", v),
			}
		}

		if dbName != s.Name() {
			var switched Session
			switched, err = s.SelectDatabase(ctx, dbName)
			if err != nil {
				return nil, fmt.Errorf("select database %q: %w", dbName, err)
			}
			r.logger().Debug("switched database for reference", "from", s.Name(), "to", dbName, "collection", collection)
			defer func() {
				if err = r.release(err, "database "+dbName, switched); err != nil {
					doc = nil
				}
			}()
			active = switched
		}
	}

	var coll Collection
	coll, err = active.SelectCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("select collection %q: %w", collection, err)
	}
	defer func() {
		if err = r.release(err, "collection "+collection, coll); err != nil {
			doc = nil
		}
	}()

	doc, err = coll.FindOne(ctx, bson.D{{Key: IDField, Value: id}})
	if err != nil {
		return nil, fmt.Errorf("find in %q: %w", collection, err)
	}
	return doc, nil
}

func (r *Resolver) release(err error, what string, c io.Closer) error {
	if c == nil {
		return err
	}
	if cerr := c.Close(); cerr != nil {
		r.logger().Warn("failed to release handle", "handle", what, "error", cerr)
		return errors.Join(err, fmt.Errorf("release %s: %w", what, cerr))
	}
	return err
}

func (r *Resolver) logger() *slog.Logger {
	if r == nil || r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
