//go:build integration

package cli_test

import (
	"encoding/json"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/aidanlsb/dbref/internal/testutil"
)

// TestIntegration_ResolveAcrossDatabases seeds two databases and resolves
// references from a session bound to the first.
func TestIntegration_ResolveAcrossDatabases(t *testing.T) {
	s := testutil.NewTestStore(t).
		WithDocument("A", "users", bson.D{{Key: "_id", Value: int32(1)}, {Key: "name", Value: "ann"}}).
		WithDocument("B", "users", bson.D{{Key: "_id", Value: int32(1)}, {Key: "name", Value: "bob"}}).
		Build()

	result := s.RunCLI("get", `{"$ref": "users", "$id": 1}`)
	result.MustSucceed(t)
	result.AssertNoWarnings(t)
	result.AssertDocumentField(t, "document", "name", "ann")

	result = s.RunCLI("get", `{"$ref": "users", "$id": 1, "$db": "B"}`)
	result.MustSucceed(t)
	result.AssertDocumentField(t, "document", "name", "bob")

	result = s.RunCLI("get", `{"$ref": "users", "$id": 2, "$db": "B"}`)
	result.MustSucceed(t)
	result.AssertNullDocument(t, "document")
	result.AssertHasWarning(t, "NO_MATCH")
}

// TestIntegration_TypeErrors checks the stable error codes for malformed
// references.
func TestIntegration_TypeErrors(t *testing.T) {
	s := testutil.NewTestStore(t).Build()

	s.RunCLI("get", `{"$ref": 5, "$id": 1}`).MustFail(t, "REF_INVALID_REF_TYPE")
	s.RunCLI("get", `{"$ref": "users", "$id": 1, "$db": true}`).MustFail(t, "REF_INVALID_DB_TYPE")
	s.RunCLI("create", "users", `{"name": "ann"}`).MustFailWithMessage(t, "_id")
}

// TestIntegration_PutThenResolve inserts through the CLI and follows the
// returned reference.
func TestIntegration_PutThenResolve(t *testing.T) {
	s := testutil.NewTestStore(t).Build()

	result := s.RunCLI("put", "orders", `{"total": 12}`, "-d", "B")
	result.MustSucceed(t)
	ref := result.DataDocument("reference")
	if ref["$db"] != "B" {
		t.Fatalf("expected reference into B, got %v", ref)
	}

	encoded, err := json.Marshal(ref)
	if err != nil {
		t.Fatal(err)
	}
	result = s.RunCLI("get", string(encoded))
	result.MustSucceed(t)
	result.AssertDocumentField(t, "document", "total", float64(12))

	result = s.RunCLI("collections", "-d", "B")
	result.MustSucceed(t)
	result.AssertResultCount(t, "collections", 1)

	s.RunCLI("get", `{"$ref": "orders", "$id": 1, "$db": "Bee"}`).MustSucceed(t)

	// Only put creates databases; reading from A or the misspelled Bee does not.
	dbs := s.Databases()
	if len(dbs) != 1 || dbs[0] != "B" {
		t.Errorf("expected databases [B], got %v", dbs)
	}
}
