package ui

import "fmt"

// Unicode symbols for status indicators
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolArrow   = "→"
)

// Success returns a success message with checkmark symbol
func Success(msg string) string {
	return fmt.Sprintf("%s %s", SymbolSuccess, msg)
}

// Successf returns a formatted success message with checkmark symbol
func Successf(format string, args ...interface{}) string {
	return Success(fmt.Sprintf(format, args...))
}

// Error returns an error message with X symbol
func Error(msg string) string {
	return fmt.Sprintf("%s %s", SymbolError, msg)
}

// Header returns a styled section header
func Header(msg string) string {
	return Bold.Render(msg)
}

// Hint returns muted hint text
func Hint(msg string) string {
	return Muted.Render(msg)
}

// Namespace renders "db.collection" with the accent style. An empty db
// renders the collection alone.
func Namespace(db, collection string) string {
	if db == "" {
		return Accent.Render(collection)
	}
	return Accent.Render(db + "." + collection)
}

// RefLine renders a reference as "→ db.collection id".
func RefLine(db, collection, id string) string {
	return fmt.Sprintf("%s %s %s", SymbolArrow, Namespace(db, collection), Muted.Render(id))
}
