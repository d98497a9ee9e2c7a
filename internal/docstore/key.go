package docstore

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// idKey encodes an _id value as canonical extended JSON so equal
// identifiers map to equal keys. Integers of every width are widened to
// int64 first, so 1, int32(1) and int64(1) share a key.
func idKey(id any) (string, error) {
	b, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: normalizeID(id)}}, true, false)
	if err != nil {
		return "", fmt.Errorf("unsupported _id value %T: %w", id, err)
	}
	return string(b), nil
}

func normalizeID(id any) any {
	if id == nil {
		return nil
	}
	rv := reflect.ValueOf(id)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Type().PkgPath() == "" {
			return rv.Int()
		}
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		if rv.Type().PkgPath() == "" {
			return int64(rv.Uint())
		}
	}
	return id
}
