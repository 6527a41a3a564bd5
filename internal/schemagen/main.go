// Command schemagen writes the JSON schemas of rule documents and of the
// configuration file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/macropower/csvr/pkg/config"
	"github.com/macropower/csvr/pkg/rule"
)

func main() {
	var (
		outFile = pflag.StringP("out", "o", "schema.json", "Output file for the generated schema")
		kind    = pflag.StringP("kind", "k", "rules", "Schema to generate, one of: [rules, config]")
	)

	pflag.Parse()

	err := run(*kind, *outFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(kind, outFile string) error {
	var generate func() ([]byte, error)

	switch kind {
	case "rules":
		generate = rule.Schema
	case "config":
		generate = config.Schema
	default:
		return fmt.Errorf("unknown schema kind %q", kind)
	}

	jsData, err := generate()
	if err != nil {
		return fmt.Errorf("generate JSON schema: %w", err)
	}

	err = os.WriteFile(outFile, jsData, 0o600)
	if err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}

	return nil
}
