package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/csvr/pkg/config"
	"github.com/macropower/csvr/pkg/rule"
)

var schemas = map[string]func() ([]byte, error){
	"rules":  rule.Schema,
	"config": config.Schema,
}

func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [rules|config]",
		Short: "Print the JSON schema of rule documents or of the configuration file",
		Example: `  # Print the rule document schema:
  csvr schema

  # Print the configuration file schema:
  csvr schema config`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []cobra.Completion{"rules", "config"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "rules"
			if len(args) > 0 {
				name = args[0]
			}

			b, err := schemas[name]()
			if err != nil {
				return fmt.Errorf("generate %s schema: %w", name, err)
			}

			mustN(fmt.Fprintln(cmd.OutOrStdout(), string(b)))

			return nil
		},
	}
}
