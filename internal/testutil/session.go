// Package testutil provides reusable test doubles and fixtures.
package testutil

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/aidanlsb/dbref/internal/dbref"
)

// ErrClosed is returned when a closed fake handle is used.
var ErrClosed = errors.New("fake handle is closed")

// Call records one collaborator call made against a FakeServer.
type Call struct {
	Op       string // "select_database", "select_collection", "find_one", "close_session", "close_collection"
	Database string
	Arg      any
}

// FakeServer is an in-memory set of databases that records every call made
// through its sessions. It is safe for concurrent use.
type FakeServer struct {
	mu    sync.Mutex
	data  map[string]map[string][]bson.D
	calls []Call
	open  map[any]struct{}

	// Injected failures, returned by the matching operation when non-nil.
	SelectDatabaseErr   error
	SelectCollectionErr error
	FindErr             error
	CloseErr            error
}

// NewFakeServer returns an empty FakeServer.
func NewFakeServer() *FakeServer {
	return &FakeServer{
		data: make(map[string]map[string][]bson.D),
		open: make(map[any]struct{}),
	}
}

// Put stores docs in db.collection.
func (f *FakeServer) Put(db, collection string, docs ...bson.D) *FakeServer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[db] == nil {
		f.data[db] = make(map[string][]bson.D)
	}
	f.data[db][collection] = append(f.data[db][collection], docs...)
	return f
}

// Session returns a session bound to db. Sessions created here belong to
// the test and are not tracked as open handles.
func (f *FakeServer) Session(db string) *FakeSession {
	return &FakeSession{server: f, name: db}
}

// Calls returns a copy of the recorded calls.
func (f *FakeServer) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded calls with the given op.
func (f *FakeServer) CallsTo(op string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// OpenHandles returns how many sessions (from SelectDatabase) and
// collections are still open.
func (f *FakeServer) OpenHandles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.open)
}

func (f *FakeServer) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *FakeServer) track(h any, open bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if open {
		f.open[h] = struct{}{}
	} else {
		delete(f.open, h)
	}
}

// FakeSession implements dbref.Session.
type FakeSession struct {
	server *FakeServer
	name   string
	closed bool
}

var _ dbref.Session = (*FakeSession)(nil)

func (s *FakeSession) Name() string { return s.name }

// Closed reports whether Close was called.
func (s *FakeSession) Closed() bool { return s.closed }

func (s *FakeSession) SelectDatabase(ctx context.Context, name string) (dbref.Session, error) {
	s.server.record(Call{Op: "select_database", Database: s.name, Arg: name})
	if s.closed {
		return nil, ErrClosed
	}
	if s.server.SelectDatabaseErr != nil {
		return nil, s.server.SelectDatabaseErr
	}
	next := &FakeSession{server: s.server, name: name}
	s.server.track(next, true)
	return next, nil
}

func (s *FakeSession) SelectCollection(ctx context.Context, name string) (dbref.Collection, error) {
	s.server.record(Call{Op: "select_collection", Database: s.name, Arg: name})
	if s.closed {
		return nil, ErrClosed
	}
	if s.server.SelectCollectionErr != nil {
		return nil, s.server.SelectCollectionErr
	}
	c := &FakeCollection{session: s, name: name}
	s.server.track(c, true)
	return c, nil
}

func (s *FakeSession) Close() error {
	s.server.record(Call{Op: "close_session", Database: s.name})
	s.closed = true
	s.server.track(s, false)
	return s.server.CloseErr
}

// FakeCollection implements dbref.Collection.
type FakeCollection struct {
	session *FakeSession
	name    string
	closed  bool
}

func (c *FakeCollection) FindOne(ctx context.Context, filter bson.D) (bson.D, error) {
	srv := c.session.server
	srv.record(Call{Op: "find_one", Database: c.session.name, Arg: filter})
	if c.closed || c.session.closed {
		return nil, ErrClosed
	}
	if srv.FindErr != nil {
		return nil, srv.FindErr
	}
	if len(filter) != 1 || filter[0].Key != "_id" {
		return nil, errors.New("fake collection only supports _id filters")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	for _, doc := range srv.data[c.session.name][c.name] {
		for _, e := range doc {
			if e.Key == "_id" && reflect.DeepEqual(e.Value, filter[0].Value) {
				return doc, nil
			}
		}
	}
	return nil, nil
}

func (c *FakeCollection) Close() error {
	c.session.server.record(Call{Op: "close_collection", Database: c.session.name, Arg: c.name})
	c.closed = true
	c.session.server.track(c, false)
	return nil
}
