package cli

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/aidanlsb/dbref/internal/config"
	"github.com/aidanlsb/dbref/internal/dbref"
	"github.com/aidanlsb/dbref/internal/docstore"
	"github.com/aidanlsb/dbref/internal/mongostore"
)

// storeSession is what both backends offer the CLI.
type storeSession interface {
	dbref.Session
	Insert(ctx context.Context, collection string, doc bson.D) (any, error)
	CollectionNames(ctx context.Context) ([]string, error)
}

var (
	_ storeSession = (*docstore.Session)(nil)
	_ storeSession = (*mongostore.Session)(nil)
)

// resolveDatabase returns the --database flag or default_database.
func resolveDatabase() (string, error) {
	return currentConfig().Database(databaseFlag)
}

// openSession opens a session bound to name on the configured backend.
func openSession(ctx context.Context, name string) (storeSession, error) {
	c := currentConfig()
	logger := getLogger().With("backend", c.GetBackend(), "database", name)
	switch c.GetBackend() {
	case config.BackendMongo:
		logger.Debug("connecting", "uri", c.GetMongoURI())
		s, err := mongostore.Connect(ctx, c.GetMongoURI(), name)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		store, err := docstore.Open(c.GetSQLiteRoot())
		if err != nil {
			return nil, err
		}
		logger.Debug("opened store", "root", store.Root(), "database", name)
		s, err := store.Session(ctx, name)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// closeSession closes s and logs a failure instead of masking the command's
// result.
func closeSession(s storeSession) {
	if err := s.Close(); err != nil {
		getLogger().Warn("failed to close session", "database", s.Name(), "error", err)
	}
}

func sessionMeta(database string) *Meta {
	return &Meta{Backend: currentConfig().GetBackend(), Database: database}
}

// currentConfig is getConfig with an empty config standing in before
// PersistentPreRunE has run.
func currentConfig() *config.Config {
	if c := getConfig(); c != nil {
		return c
	}
	return &config.Config{}
}
