package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/csvr/pkg/rule"
)

type ValidateArgs struct {
	*RootArgs

	Rules string
}

func NewValidateArgs(rootArgs *RootArgs) *ValidateArgs {
	return &ValidateArgs{
		RootArgs: rootArgs,
	}
}

func (va *ValidateArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&va.Rules, "rules", "r", "", "Path to the rule document (JSON or YAML)")

	must(cmd.MarkFlagFilename("rules", "json", "yaml", "yml"))
}

func NewValidateCmd(va *ValidateArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and compile a rule document, then exit",
		Example: `  # Check a rule document before deploying it:
  csvr validate --rules rules.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if va.Rules == "" {
				return ErrNoRules
			}

			rules, err := rule.LoadAndCompile(va.Rules)
			if err != nil {
				return fmt.Errorf("load rules %q: %w", va.Rules, err)
			}

			mustN(fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules ok\n", va.Rules, len(rules)))

			return nil
		},
	}
	va.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}
