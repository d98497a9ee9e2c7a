package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/dbref/internal/dbref"
	"github.com/aidanlsb/dbref/internal/ui"
)

// putOutput is the JSON shape of an inserted document.
type putOutput struct {
	ID        json.RawMessage `json:"id"`
	Reference json.RawMessage `json:"reference"`
}

var putCmd = &cobra.Command{
	Use:   "put <collection> <document>",
	Short: "Insert a document",
	Long: `Insert an Extended JSON document into <collection> of the session's
database. A document without _id is given a new ObjectID.

Prints the _id and a reference (with $db) to the new document.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := args[0]
		doc, err := parseDocument(args[1])
		if err != nil {
			return handleError(ErrInvalidInput, err, "Pass the document as an Extended JSON object")
		}

		database, err := resolveDatabase()
		if err != nil {
			return handleError(ErrMissingArgument, err, "Pass --database or set default_database in the config")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		session, err := openSession(ctx, database)
		if err != nil {
			return handleError(errorCode(err), err, errorSuggestion(err))
		}
		defer closeSession(session)

		id, err := session.Insert(ctx, collection, doc)
		if err != nil {
			return handleError(errorCode(err), err, errorSuggestion(err))
		}
		getLogger().Debug("inserted document", "database", database, "collection", collection)

		ref, err := dbref.Create(dbref.IDSource{Value: id}, collection, database)
		if err != nil {
			return handleError(errorCode(err), err, "")
		}
		encodedID, err := formatValue(id)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		encodedRef, err := formatValue(ref.D())
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if isJSONOutput() {
			respond(putOutput{ID: encodedID, Reference: encodedRef}, sessionMeta(database))
			return nil
		}
		fmt.Println(ui.Successf("Inserted %s into %s", string(encodedID), ui.Namespace(database, collection)))
		fmt.Println(string(encodedRef))
		return nil
	},
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List the collections of the session's database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := resolveDatabase()
		if err != nil {
			return handleError(ErrMissingArgument, err, "Pass --database or set default_database in the config")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		session, err := openSession(ctx, database)
		if err != nil {
			return handleError(errorCode(err), err, errorSuggestion(err))
		}
		defer closeSession(session)

		names, err := session.CollectionNames(ctx)
		if err != nil {
			return handleError(errorCode(err), err, "")
		}
		if names == nil {
			names = []string{}
		}

		if isJSONOutput() {
			meta := sessionMeta(database)
			meta.Count = len(names)
			respond(map[string]interface{}{"collections": names}, meta)
			return nil
		}
		if len(names) == 0 {
			fmt.Println(ui.Hint("no collections"))
			return nil
		}
		for _, name := range names {
			fmt.Println(ui.Namespace(database, name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(collectionsCmd)
}
