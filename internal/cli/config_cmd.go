package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/dbref/internal/config"
	"github.com/aidanlsb/dbref/internal/ui"
)

// configKeys maps the keys accepted by 'config set' to their fields.
var configKeys = map[string]func(c *config.Config) *string{
	"backend":          func(c *config.Config) *string { return &c.Backend },
	"default_database": func(c *config.Config) *string { return &c.DefaultDatabase },
	"log_level":        func(c *config.Config) *string { return &c.LogLevel },
	"log_file":         func(c *config.Config) *string { return &c.LogFile },
	"sqlite.root":      func(c *config.Config) *string { return &c.SQLite.Root },
	"mongo.uri":        func(c *config.Config) *string { return &c.Mongo.URI },
	"ui.accent":        func(c *config.Config) *string { return &c.UI.Accent },
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the dbref config.toml",
	Long: `Manage the dbref config.toml.

Without a subcommand, prints the effective configuration.`,
	Args: cobra.NoArgs,
	// Config commands must work with a missing or broken config file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := config.ResolveConfigPath(configPath)
	c, err := loadConfigAllowMissing(path)
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Fix the file or recreate it with 'dbref config init'")
	}

	values := map[string]string{
		"backend":          c.GetBackend(),
		"default_database": c.DefaultDatabase,
		"log_level":        c.LogLevel,
		"log_file":         c.LogFile,
		"sqlite.root":      c.GetSQLiteRoot(),
		"mongo.uri":        c.GetMongoURI(),
		"ui.accent":        c.UI.Accent,
	}

	if isJSONOutput() {
		respond(map[string]interface{}{
			"config_path": path,
			"values":      values,
		}, nil)
		return nil
	}

	fmt.Println(ui.Header(path))
	for _, key := range sortedConfigKeys() {
		if values[key] == "" {
			continue
		}
		fmt.Printf("%s %s\n", ui.Muted.Render(key+" ="), values[key])
	}
	return nil
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config.toml if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetPath := config.ResolveConfigPath(configPath)
		_, statErr := os.Stat(targetPath)
		existed := statErr == nil
		if statErr != nil && !os.IsNotExist(statErr) {
			return handleError(ErrConfigInvalid, statErr, "")
		}

		createdPath, err := config.CreateDefault(targetPath)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if isJSONOutput() {
			respond(map[string]interface{}{
				"config_path": createdPath,
				"created":     !existed,
			}, nil)
			return nil
		}

		if existed {
			fmt.Printf("Config already exists: %s\n", createdPath)
		} else {
			fmt.Println(ui.Successf("Created config: %s", createdPath))
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolveConfigPath(configPath)
		_, err := os.Stat(path)
		exists := err == nil

		if isJSONOutput() {
			respond(map[string]interface{}{
				"config_path": path,
				"exists":      exists,
			}, nil)
			return nil
		}
		fmt.Println(path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key=value>...",
	Short: "Set one or more config.toml fields",
	Long: `Set config.toml fields. An empty value clears the field.

Keys: backend, default_database, log_level, log_file, sqlite.root,
mongo.uri, ui.accent.

Example:
  dbref config set backend=mongo mongo.uri=mongodb://db:27017`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolveConfigPath(configPath)
		c, err := loadConfigAllowMissing(path)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Fix the file or recreate it with 'dbref config init'")
		}

		var changed []string
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			key = strings.TrimSpace(key)
			field, known := configKeys[key]
			if !ok || !known {
				return handleError(ErrInvalidInput,
					fmt.Errorf("invalid setting %q", arg),
					"Use key=value with one of: "+strings.Join(sortedConfigKeys(), ", "))
			}
			*field(c) = strings.TrimSpace(value)
			changed = append(changed, key)
		}

		if err := c.Validate(); err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if err := config.SaveTo(path, c); err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if isJSONOutput() {
			respond(map[string]interface{}{
				"config_path": path,
				"changed":     changed,
			}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Updated %s in %s", strings.Join(changed, ", "), path))
		return nil
	},
}

func loadConfigAllowMissing(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &config.Config{}, nil
	}
	return config.LoadFrom(path)
}

func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
