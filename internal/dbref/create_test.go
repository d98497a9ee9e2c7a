package dbref

import (
	"errors"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type user struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

type Identity struct {
	OID primitive.ObjectID `bson:"_id,omitempty"`
}

type account struct {
	Identity `bson:",inline"`
	Email    string `bson:"email"`
}

func TestCreate(t *testing.T) {
	oid := primitive.NewObjectID()

	t.Run("raw identifier", func(t *testing.T) {
		ref, err := Create(oid, "coll", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.Ref != "coll" {
			t.Errorf("expected $ref 'coll', got %q", ref.Ref)
		}
		if ref.ID != oid {
			t.Errorf("expected $id %v, got %v", oid, ref.ID)
		}
		if _, found, _ := lookup(ref, KeyDB); found {
			t.Error("expected no $db field")
		}
	})

	t.Run("with database", func(t *testing.T) {
		ref, err := Create(42, "coll", "other")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.DB != "other" {
			t.Errorf("expected $db 'other', got %q", ref.DB)
		}
	})

	t.Run("nested id in bson.M", func(t *testing.T) {
		ref, err := Create(bson.M{"_id": 7, "name": "x"}, "coll", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != 7 {
			t.Errorf("expected $id 7, got %v", ref.ID)
		}
	})

	t.Run("nested id in bson.D", func(t *testing.T) {
		ref, err := Create(bson.D{{Key: "name", Value: "x"}, {Key: "_id", Value: "abc"}}, "coll", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != "abc" {
			t.Errorf("expected $id 'abc', got %v", ref.ID)
		}
	})

	t.Run("nested id in map", func(t *testing.T) {
		ref, err := Create(map[string]int{"_id": 3}, "coll", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != 3 {
			t.Errorf("expected $id 3, got %v", ref.ID)
		}
	})

	t.Run("nested id in raw document", func(t *testing.T) {
		raw, err := bson.Marshal(bson.D{{Key: "_id", Value: oid}})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		ref, err := Create(bson.Raw(raw), "coll", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != oid {
			t.Errorf("expected $id %v, got %v", oid, ref.ID)
		}
	})

	t.Run("nested id in tagged struct", func(t *testing.T) {
		u := &user{ID: oid, Name: "freya"}
		ref, err := Create(u, "users", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != oid {
			t.Errorf("expected $id %v, got %v", oid, ref.ID)
		}
	})

	t.Run("nested id in inline struct", func(t *testing.T) {
		a := account{Identity: Identity{OID: oid}, Email: "a@b.c"}
		ref, err := Create(a, "accounts", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != oid {
			t.Errorf("expected $id %v, got %v", oid, ref.ID)
		}
	})

	t.Run("missing _id fails", func(t *testing.T) {
		_, err := Create(bson.M{"name": "x"}, "coll", "")
		if !errors.Is(err, ErrMissingID) {
			t.Fatalf("expected ErrMissingID, got %v", err)
		}
		if KindOf(err) != KindMalformedSource {
			t.Errorf("expected KindMalformedSource, got %v", KindOf(err))
		}
	})

	t.Run("nested id in document pointers", func(t *testing.T) {
		ref, err := Create(&bson.M{"_id": 7}, "coll", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != 7 {
			t.Errorf("expected $id 7, got %#v", ref.ID)
		}

		ref, err = Create(&bson.D{{Key: "name", Value: "x"}, {Key: "_id", Value: "u1"}}, "coll", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID != "u1" {
			t.Errorf("expected $id 'u1', got %#v", ref.ID)
		}
	})

	t.Run("document pointer without _id fails", func(t *testing.T) {
		for _, src := range []any{&bson.D{{Key: "name", Value: "x"}}, &bson.M{"name": "x"}} {
			_, err := Create(src, "coll", "")
			if !errors.Is(err, ErrMissingID) {
				t.Errorf("Create(%T): expected ErrMissingID, got %v", src, err)
			}
		}
	})

	t.Run("omitempty zero _id is missing", func(t *testing.T) {
		_, err := Create(user{Name: "x"}, "coll", "")
		if !errors.Is(err, ErrMissingID) {
			t.Fatalf("expected ErrMissingID, got %v", err)
		}
	})

	t.Run("resource handle fails", func(t *testing.T) {
		_, err := Create(os.Stdin, "coll", "")
		if !errors.Is(err, ErrUnsupportedSource) {
			t.Fatalf("expected ErrUnsupportedSource, got %v", err)
		}
		if errors.Is(err, ErrMissingID) {
			t.Error("handle failure must be distinguishable from missing _id")
		}
	})

	t.Run("channel is a handle", func(t *testing.T) {
		_, err := Create(make(chan int), "coll", "")
		if !errors.Is(err, ErrUnsupportedSource) {
			t.Fatalf("expected ErrUnsupportedSource, got %v", err)
		}
	})

	t.Run("empty collection fails", func(t *testing.T) {
		_, err := Create(1, "", "")
		if !errors.Is(err, ErrEmptyCollection) {
			t.Fatalf("expected ErrEmptyCollection, got %v", err)
		}
	})

	t.Run("explicit id source keeps document as id", func(t *testing.T) {
		composite := bson.D{{Key: "a", Value: 1}}
		ref, err := Create(IDSource{Value: composite}, "coll", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := ref.ID.(bson.D); !ok {
			t.Errorf("expected bson.D $id, got %T", ref.ID)
		}
	})

	t.Run("identifier is shared not copied", func(t *testing.T) {
		id := &oid
		ref, err := Create(id, "coll", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.ID.(*primitive.ObjectID) != id {
			t.Error("expected the reference to hold the caller's pointer")
		}
		if *id != oid {
			t.Error("caller's identifier must remain usable")
		}
	})
}

func TestReferenceD(t *testing.T) {
	t.Run("field order without db", func(t *testing.T) {
		d := MustCreate(1, "coll", "").D()
		keys := []string{}
		for _, e := range d {
			keys = append(keys, e.Key)
		}
		if len(keys) != 2 || keys[0] != KeyRef || keys[1] != KeyID {
			t.Errorf("expected [$ref $id], got %v", keys)
		}
	})

	t.Run("field order with db", func(t *testing.T) {
		d := MustCreate(1, "coll", "db").D()
		if len(d) != 3 || d[0].Key != KeyRef || d[1].Key != KeyID || d[2].Key != KeyDB {
			t.Errorf("expected [$ref $id $db], got %v", d)
		}
	})

	t.Run("marshals in field order", func(t *testing.T) {
		raw, err := bson.Marshal(MustCreate(int32(5), "coll", "db"))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		elems, err := bson.Raw(raw).Elements()
		if err != nil {
			t.Fatalf("elements: %v", err)
		}
		want := []string{KeyRef, KeyID, KeyDB}
		if len(elems) != len(want) {
			t.Fatalf("expected %d elements, got %d", len(want), len(elems))
		}
		for i, e := range elems {
			if e.Key() != want[i] {
				t.Errorf("element %d: expected %q, got %q", i, want[i], e.Key())
			}
		}
	})
}

func TestSourceOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"object id", primitive.NewObjectID(), "id"},
		{"string", "abc", "id"},
		{"int", 5, "id"},
		{"nil", nil, "id"},
		{"decimal", primitive.NewDecimal128(1, 2), "id"},
		{"binary", primitive.Binary{Subtype: 4, Data: []byte{1}}, "id"},
		{"bson.D", bson.D{}, "doc"},
		{"bson.M", bson.M{}, "doc"},
		{"bson.D pointer", &bson.D{}, "doc"},
		{"bson.M pointer", &bson.M{}, "doc"},
		{"bson.A pointer", &bson.A{}, "doc"},
		{"object id pointer", &primitive.ObjectID{}, "id"},
		{"struct", user{}, "doc"},
		{"struct pointer", &user{}, "doc"},
		{"slice", []int{1}, "doc"},
		{"file", os.Stdout, "handle"},
		{"func", func() {}, "handle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			switch SourceOf(tt.in).(type) {
			case IDSource:
				got = "id"
			case DocSource:
				got = "doc"
			case HandleSource:
				got = "handle"
			}
			if got != tt.want {
				t.Errorf("SourceOf(%T) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
