// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/dbref/internal/config"
	"github.com/aidanlsb/dbref/internal/logging"
	"github.com/aidanlsb/dbref/internal/ui"
)

var (
	// Global flags
	configPath     string
	backendFlag    string
	databaseFlag   string
	sqliteRootFlag string
	mongoURIFlag   string
	logLevelFlag   string

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	logger             *slog.Logger
	closeLogs          func() error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dbref",
	Short: "dbref - create, check and resolve database references",
	Long: `dbref works with database references: documents of the form
{"$ref": <collection>, "$id": <id>[, "$db": <database>]} that point at a
document in another collection, possibly in another database.

Values are given as relaxed MongoDB Extended JSON, e.g. '{"$oid": "..."}'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return preRunError(cmd, fmt.Errorf("failed to load config: %w", err), "Check the config file syntax")
		}
		applyFlagOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return preRunError(cmd, err, "Run 'dbref config path' to locate the config file")
		}

		level, _ := config.ParseLevel(cfg.LogLevel)
		logger, closeLogs, err = logging.Setup(logging.Options{
			Level:   level,
			Console: cmd.ErrOrStderr(),
			File:    config.ExpandPath(cfg.LogFile),
		})
		if err != nil {
			return preRunError(cmd, err, "Check log_file in the config")
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if closeLogs != nil {
			return closeLogs()
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Document store backend: sqlite or mongo")
	rootCmd.PersistentFlags().StringVarP(&databaseFlag, "database", "d", "", "Database to bind the session to (overrides default_database)")
	rootCmd.PersistentFlags().StringVar(&sqliteRootFlag, "sqlite-root", "", "Directory of the SQLite store")
	rootCmd.PersistentFlags().StringVar(&mongoURIFlag, "mongo-uri", "", "MongoDB connection string")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// preRunError reports a setup failure. Unlike handleError it always returns
// the error so the command body does not run; in JSON mode Cobra is told not
// to print it a second time.
func preRunError(cmd *cobra.Command, err error, suggestion string) error {
	if jsonOutput {
		_ = failure{code: ErrConfigInvalid, err: err, suggestion: suggestion}.report()
		cmd.SilenceErrors = true
	}
	return err
}

// applyFlagOverrides copies explicitly set global flags over config values.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		c.Backend = backendFlag
	}
	if flags.Changed("sqlite-root") {
		c.SQLite.Root = sqliteRootFlag
	}
	if flags.Changed("mongo-uri") {
		c.Mongo.URI = mongoURIFlag
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevelFlag
	}
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}

// getLogger returns the configured logger.
func getLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return loadedCfg, resolvedPath, nil
}
