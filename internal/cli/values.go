package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// valueKey wraps a lone value so it can pass through the document-only
// Extended JSON codec.
const valueKey = "v"

// parseValue parses relaxed Extended JSON. Scalars, arrays and documents
// are accepted; documents decode as bson.D so key order is kept.
func parseValue(input string) (any, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("value is empty")
	}
	var wrapped bson.D
	if err := bson.UnmarshalExtJSON([]byte(`{"`+valueKey+`":`+input+`}`), false, &wrapped); err != nil {
		return nil, fmt.Errorf("invalid Extended JSON %q: %w", input, err)
	}
	if len(wrapped) != 1 {
		return nil, fmt.Errorf("invalid Extended JSON %q", input)
	}
	return wrapped[0].Value, nil
}

// parseDocument parses input as an Extended JSON document.
func parseDocument(input string) (bson.D, error) {
	v, err := parseValue(input)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(bson.D)
	if !ok {
		return nil, fmt.Errorf("expected a document, got %T", v)
	}
	return doc, nil
}

// formatValue renders v as relaxed Extended JSON.
func formatValue(v any) (json.RawMessage, error) {
	if doc, ok := v.(bson.D); ok {
		return bson.MarshalExtJSON(doc, false, false)
	}
	data, err := bson.MarshalExtJSON(bson.D{{Key: valueKey, Value: v}}, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped[valueKey], nil
}

// mustFormat is formatValue for text output, falling back to %v.
func mustFormat(v any) string {
	data, err := formatValue(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
