package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/dbref/internal/dbref"
	"github.com/aidanlsb/dbref/internal/ui"
)

var createDB string

// referenceOutput is the JSON shape of a reference.
type referenceOutput struct {
	Reference json.RawMessage `json:"reference"`
}

var createCmd = &cobra.Command{
	Use:   "create <collection> <id-or-document>",
	Short: "Build a database reference",
	Long: `Build a reference to a document in <collection>.

The second argument is Extended JSON. A document contributes its _id; any
other value is used as the identifier itself.

Examples:
  dbref create users '{"$oid": "5f1e9b3c2a4d5e6f7a8b9c0d"}'
  dbref create users '{"_id": 42, "name": "ann"}' --db accounts`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := args[0]
		src, err := parseValue(args[1])
		if err != nil {
			return handleError(ErrInvalidInput, err, "Pass the identifier as Extended JSON, e.g. 42, '\"abc\"' or '{\"$oid\": \"...\"}'")
		}

		ref, err := dbref.Create(src, collection, createDB)
		if err != nil {
			return handleErrorWithDetails(errorCode(err), err, "Documents must carry an _id field", errorDetails(err))
		}

		encoded, err := formatValue(ref.D())
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if isJSONOutput() {
			respond(referenceOutput{Reference: encoded}, nil)
			return nil
		}

		fmt.Println(string(encoded))
		fmt.Println(ui.RefLine(ref.DB, ref.Ref, mustFormat(ref.ID)))
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createDB, "db", "", "Database the referenced document lives in")
	rootCmd.AddCommand(createCmd)
}
