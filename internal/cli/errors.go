package cli

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aidanlsb/dbref/internal/dbref"
	"github.com/aidanlsb/dbref/internal/docstore"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Config errors
	ErrConfigInvalid = "CONFIG_INVALID"

	// Reference errors. These mirror dbref.Kind.
	ErrRefMalformedSource = "REF_MALFORMED_SOURCE"
	ErrRefInvalidRefType  = "REF_INVALID_REF_TYPE"
	ErrRefInvalidDBType   = "REF_INVALID_DB_TYPE"

	// Document errors
	ErrDuplicateID = "DUPLICATE_ID"

	// Database errors
	ErrDatabaseError   = "DATABASE_ERROR"
	ErrDatabaseVersion = "DATABASE_VERSION_MISMATCH"

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnNotAReference = "NOT_A_REFERENCE"
	WarnNoMatch       = "NO_MATCH"
)

// errorCode maps an error from the reference or storage layers to a stable
// CLI error code.
func errorCode(err error) string {
	switch dbref.KindOf(err) {
	case dbref.KindMalformedSource:
		return ErrRefMalformedSource
	case dbref.KindInvalidRefType:
		return ErrRefInvalidRefType
	case dbref.KindInvalidDBType:
		return ErrRefInvalidDBType
	}
	switch {
	case errors.Is(err, docstore.ErrDuplicateID), mongo.IsDuplicateKeyError(err):
		return ErrDuplicateID
	case errors.Is(err, docstore.ErrIncompatibleSchema):
		return ErrDatabaseVersion
	case errors.Is(err, docstore.ErrInvalidName):
		return ErrInvalidInput
	}
	return ErrDatabaseError
}

// errorSuggestion returns a hint matching the failure behind err.
func errorSuggestion(err error) string {
	switch dbref.KindOf(err) {
	case dbref.KindInvalidRefType:
		return "$ref must be a collection name string"
	case dbref.KindInvalidDBType:
		return "$db must be a database name string"
	case dbref.KindMalformedSource:
		return "Pass a document with an _id, or an identifier"
	}
	switch {
	case errors.Is(err, docstore.ErrDuplicateID), mongo.IsDuplicateKeyError(err):
		return "A document with this _id already exists in the collection"
	case errors.Is(err, docstore.ErrInvalidName):
		return "Database and collection names must be non-empty and contain no path separators"
	case errors.Is(err, docstore.ErrIncompatibleSchema):
		return "The database was written by a different version of dbref"
	case errors.Is(err, context.DeadlineExceeded):
		return "Raise --timeout or check that the backend is reachable"
	}
	return "Check the backend settings"
}

// errorDetails returns structured details for reference errors, including the
// numeric protocol code when there is one.
func errorDetails(err error) interface{} {
	code := dbref.CodeOf(err)
	if code == 0 {
		return nil
	}
	return map[string]interface{}{"code": code}
}
