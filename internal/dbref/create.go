package dbref

import (
	"fmt"
	"io"
	"reflect"
)

// Source is where Create takes the $id from. It is one of IDSource,
// DocSource or HandleSource.
type Source interface {
	source()
}

// IDSource is a raw identifier, used as $id unchanged.
type IDSource struct {
	Value any
}

// DocSource is a document-like value whose _id field becomes $id.
type DocSource struct {
	Doc any
}

// HandleSource is an opaque resource (file, connection, channel...). It has
// no identifier, so Create always rejects it.
type HandleSource struct {
	Handle any
}

func (IDSource) source()     {}
func (DocSource) source()    {}
func (HandleSource) source() {}

// SourceOf classifies v. Values that are already a Source are returned as is.
func SourceOf(v any) Source {
	if s, ok := v.(Source); ok {
		return s
	}
	if isScalar(v) {
		return IDSource{Value: v}
	}
	if isHandle(v) {
		return HandleSource{Handle: v}
	}
	if _, _, aggregate := lookup(v, IDField); aggregate {
		return DocSource{Doc: v}
	}
	return IDSource{Value: v}
}

func isHandle(v any) bool {
	if _, ok := v.(io.Closer); ok {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Uintptr:
		return true
	}
	return false
}

// Create builds a reference to the document identified by src in
// collection. src may be a raw identifier, a document carrying an _id
// field, or an explicit Source. An empty db leaves $db out.
//
// The identifier is stored as given: if it is a pointer, the reference and
// the caller share it.
func Create(src any, collection, db string) (Reference, error) {
	if collection == "" {
		return Reference{}, malformed(ErrEmptyCollection, "")
	}

	var id any
	switch s := SourceOf(src).(type) {
	case IDSource:
		id = s.Value
	case DocSource:
		v, found, _ := lookup(s.Doc, IDField)
		if !found {
			return Reference{}, malformed(ErrMissingID, fmt.Sprintf("in the %T", s.Doc))
		}
		id = v
	case HandleSource:
		return Reference{}, malformed(ErrUnsupportedSource, fmt.Sprintf("don't know what to do with a %T", s.Handle))
	}

	return Reference{Ref: collection, ID: id, DB: db}, nil
}

// MustCreate is like Create but panics on error. It is meant for fixtures.
func MustCreate(src any, collection, db string) Reference {
	ref, err := Create(src, collection, db)
	if err != nil {
		panic(err)
	}
	return ref
}
