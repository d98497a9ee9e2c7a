package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/dbref/internal/dbref"
)

var isrefCmd = &cobra.Command{
	Use:   "isref <value>",
	Short: "Report whether a value is shaped like a reference",
	Long: `Print true when <value> is a document carrying both $ref and $id.

Only presence is checked; use 'dbref get' to validate field types.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseValue(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "Pass the value as Extended JSON")
		}

		isRef := dbref.IsRef(v)
		if isJSONOutput() {
			respond(map[string]interface{}{"is_reference": isRef}, nil)
			return nil
		}
		fmt.Println(isRef)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(isrefCmd)
}
