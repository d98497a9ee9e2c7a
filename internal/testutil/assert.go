package testutil

import (
	"testing"
)

// AssertHasWarning checks that the result contains a warning with the given code.
func (r *CLIResult) AssertHasWarning(t *testing.T, code string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Errorf("expected warning with code %s, got warnings: %+v", code, r.Warnings)
}

// AssertNoWarnings checks that the result has no warnings.
func (r *CLIResult) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("expected no warnings, got: %+v", r.Warnings)
	}
}

// AssertResultCount checks that a list in Data has the expected length.
func (r *CLIResult) AssertResultCount(t *testing.T, key string, expected int) {
	t.Helper()
	results := r.DataList(key)
	if len(results) != expected {
		t.Errorf("expected %d %s, got %d\nRaw: %s", expected, key, len(results), r.RawJSON)
	}
}

// AssertDocumentField checks that Data[key] is a document whose field has
// the expected value. Numbers decode as float64.
func (r *CLIResult) AssertDocumentField(t *testing.T, key, field string, expected interface{}) {
	t.Helper()
	doc := r.DataDocument(key)
	if doc == nil {
		t.Fatalf("expected a document at %s\nRaw: %s", key, r.RawJSON)
	}
	if doc[field] != expected {
		t.Errorf("expected %s.%s = %v, got %v\nRaw: %s", key, field, expected, doc[field], r.RawJSON)
	}
}

// AssertNullDocument checks that Data[key] is present and null.
func (r *CLIResult) AssertNullDocument(t *testing.T, key string) {
	t.Helper()
	v, ok := r.Data[key]
	if !ok || v != nil {
		t.Errorf("expected %s to be null, got %v\nRaw: %s", key, v, r.RawJSON)
	}
}
