// Package dbref implements database references: pointers to a document in
// a possibly different collection and database, stored as the ordered
// mapping {$ref, $id, $db}.
package dbref

import (
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reserved key names. Other readers of the same stored documents rely on
// them verbatim.
const (
	KeyRef = "$ref"
	KeyID  = "$id"
	KeyDB  = "$db"

	// IDField is the primary key field of a stored document.
	IDField = "_id"
)

// Reference points at the document whose _id is ID in collection Ref of
// database DB. An empty DB means the database of the document holding the
// reference.
type Reference struct {
	Ref string `bson:"$ref" json:"$ref"`
	ID  any    `bson:"$id" json:"$id"`
	DB  string `bson:"$db,omitempty" json:"$db,omitempty"`
}

// D returns the reference as an ordered document.
func (r Reference) D() bson.D {
	d := bson.D{{Key: KeyRef, Value: r.Ref}, {Key: KeyID, Value: r.ID}}
	if r.DB != "" {
		d = append(d, bson.E{Key: KeyDB, Value: r.DB})
	}
	return d
}

func (r Reference) lookup(key string) (any, bool) {
	switch key {
	case KeyRef:
		return r.Ref, true
	case KeyID:
		return r.ID, true
	case KeyDB:
		return r.DB, r.DB != ""
	}
	return nil, false
}

var primitivePkg = reflect.TypeOf(primitive.ObjectID{}).PkgPath()

var timeType = reflect.TypeOf(time.Time{})

// containerTypes live in the primitive package but are documents, not
// identifiers. bson.D, bson.M and bson.A alias the first three.
var containerTypes = map[reflect.Type]bool{
	reflect.TypeOf(primitive.D{}): true,
	reflect.TypeOf(primitive.M{}): true,
	reflect.TypeOf(primitive.A{}): true,
	reflect.TypeOf(primitive.E{}): true,
}

// isScalar reports whether v is a value the identifier system treats as an
// atom: nil, strings, numbers, bools, byte slices, times and the BSON
// primitive types.
func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, []byte, time.Time:
		return true
	case bson.D, bson.M, bson.A, bson.Raw:
		return false
	}

	rt := reflect.TypeOf(v)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if containerTypes[rt] {
		return false
	}
	if rt.PkgPath() == primitivePkg || rt == timeType {
		return true
	}

	switch rt.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// lookup returns the value stored under key in v. aggregate is false when v
// is not a document-like value at all, in which case found is also false.
func lookup(v any, key string) (value any, found, aggregate bool) {
	switch d := v.(type) {
	case nil:
		return nil, false, false
	case Reference:
		value, found = d.lookup(key)
		return value, found, true
	case *Reference:
		if d == nil {
			return nil, false, true
		}
		value, found = d.lookup(key)
		return value, found, true
	case bson.D:
		for _, e := range d {
			if e.Key == key {
				return e.Value, true, true
			}
		}
		return nil, false, true
	case bson.M:
		value, found = d[key]
		return value, found, true
	case bson.Raw:
		rv, err := d.LookupErr(key)
		if err != nil {
			return nil, false, true
		}
		return rawValue(rv), true, true
	case bson.A:
		return nil, false, true
	case *bson.D:
		if d == nil {
			return nil, false, true
		}
		return lookup(*d, key)
	case *bson.M:
		if d == nil {
			return nil, false, true
		}
		return lookup(*d, key)
	case *bson.Raw:
		if d == nil {
			return nil, false, true
		}
		return lookup(*d, key)
	case *bson.A:
		return nil, false, true
	}

	if isScalar(v) {
		return nil, false, false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			k := rv.Type().Elem().Kind()
			return nil, false, k == reflect.Struct || k == reflect.Map
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return nil, false, true
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(kt))
		if !mv.IsValid() {
			return nil, false, true
		}
		return mv.Interface(), true, true
	case reflect.Struct:
		value, found = structField(rv, key)
		return value, found, true
	case reflect.Slice, reflect.Array:
		return nil, false, true
	}
	return nil, false, false
}

// structField finds the field whose BSON name is key, following the
// mongo-driver struct tag rules: lower-cased field name by default, ",inline"
// and embedded structs flattened, ",omitempty" zero values absent.
func structField(rv reflect.Value, key string) (any, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("bson"), ",")
		if name == "-" {
			continue
		}
		fv := rv.Field(i)

		inline := strings.Contains(opts, "inline") || (f.Anonymous && name == "")
		if inline {
			for fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					break
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				if v, ok := structField(fv, key); ok {
					return v, true
				}
				continue
			}
		}

		if name == "" {
			name = strings.ToLower(f.Name)
		}
		if name != key {
			continue
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			return nil, false
		}
		return fv.Interface(), true
	}
	return nil, false
}

func rawValue(rv bson.RawValue) any {
	var out any
	if err := rv.Unmarshal(&out); err != nil {
		return rv
	}
	return out
}
