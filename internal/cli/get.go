package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/dbref/internal/dbref"
	"github.com/aidanlsb/dbref/internal/ui"
)

var getTimeout time.Duration

// documentOutput is the JSON shape of a resolved reference. Document is
// null when nothing matched.
type documentOutput struct {
	Document json.RawMessage `json:"document"`
}

var getCmd = &cobra.Command{
	Use:   "get <reference>",
	Short: "Resolve a reference to the document it points at",
	Long: `Resolve a reference against the configured backend.

The session is bound to --database (or default_database). A reference
with a different $db is resolved in that database instead.

Examples:
  dbref get '{"$ref": "users", "$id": 42}' -d app
  dbref get '{"$ref": "users", "$id": 42, "$db": "accounts"}' -d app`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseValue(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "Pass the reference as Extended JSON")
		}

		database, err := resolveDatabase()
		if err != nil {
			return handleError(ErrMissingArgument, err, "Pass --database or set default_database in the config")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if getTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, getTimeout)
			defer cancel()
		}

		start := time.Now()
		session, err := openSession(ctx, database)
		if err != nil {
			return handleError(errorCode(err), err, errorSuggestion(err))
		}
		defer closeSession(session)

		doc, err := dbref.NewResolver(getLogger()).Get(ctx, session, ref)
		if err != nil {
			return handleErrorWithDetails(errorCode(err), err, errorSuggestion(err), errorDetails(err))
		}
		elapsed := time.Since(start).Milliseconds()

		var warnings []Warning
		if doc == nil {
			if dbref.IsRef(ref) {
				warnings = append(warnings, Warning{Code: WarnNoMatch, Message: "no document matches the reference"})
			} else {
				warnings = append(warnings, Warning{Code: WarnNotAReference, Message: "value is not a reference"})
			}
		}

		if isJSONOutput() {
			out := documentOutput{Document: json.RawMessage("null")}
			if doc != nil {
				encoded, err := formatValue(doc)
				if err != nil {
					return handleError(ErrInternal, err, "")
				}
				out.Document = encoded
			}
			meta := sessionMeta(database)
			meta.QueryTimeMs = elapsed
			respond(out, meta, warnings...)
			return nil
		}

		if doc == nil {
			fmt.Println(ui.Hint(warnings[0].Message))
			return nil
		}
		fmt.Println(mustFormat(doc))
		return nil
	},
}

func init() {
	getCmd.Flags().DurationVar(&getTimeout, "timeout", 10*time.Second, "Give up after this long (0 for no limit)")
	rootCmd.AddCommand(getCmd)
}
