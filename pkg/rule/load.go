package rule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/macropower/csvr/api"
	"github.com/macropower/csvr/pkg/yaml"
)

// SchemaID is the ID of the rule document JSON schema.
const SchemaID = "https://csvr.macropower.dev/rules.v1.json"

// Format is the encoding of a rule document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath returns [FormatYAML] for .yaml and .yml files and
// [FormatJSON] for anything else.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}

	return FormatJSON
}

// Schema returns the JSON schema of a rule document.
func Schema() ([]byte, error) {
	return yaml.Generate(yaml.NewSchemaGenerator(SchemaID).ReflectList(&Rule{}))
}

var defaultValidator = sync.OnceValues(func() (*yaml.Validator, error) {
	return yaml.NewValidatorFromSchema(SchemaID, yaml.NewSchemaGenerator(SchemaID).ReflectList(&Rule{}))
})

// Parse validates and decodes a rule document.
func Parse(data []byte, format Format) ([]Rule, error) {
	validator, err := defaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	yamlError := yaml.NewErrorWrapper(yaml.WithSource(data))

	var raw any

	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	default:
		err = json.Unmarshal(data, &raw)
	}

	if err != nil {
		return nil, fmt.Errorf("decode rules: %w", yamlError.Wrap(err))
	}

	err = validator.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("validate rules: %w", yamlError.Wrap(err))
	}

	var rules []Rule

	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(bytes.NewReader(data)).Decode(&rules)
	default:
		err = json.Unmarshal(data, &rules)
	}

	if err != nil {
		return nil, fmt.Errorf("decode rules: %w", yamlError.Wrap(err))
	}

	return rules, nil
}

// Load reads and parses the rule document at path.
func Load(path string) ([]Rule, error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	return Parse(data, FormatFromPath(path))
}

// LoadAndCompile reads, parses and compiles the rule document at path.
func LoadAndCompile(path string) ([]*Compiled, error) {
	rules, err := Load(path)
	if err != nil {
		return nil, err
	}

	return CompileAll(rules)
}
