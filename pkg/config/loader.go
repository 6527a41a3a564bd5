package config

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/macropower/csvr/api"
	"github.com/macropower/csvr/pkg/yaml"
)

// SchemaID is the ID of the configuration JSON schema.
const SchemaID = "https://csvr.macropower.dev/config.v1beta1.json"

var defaultValidator = sync.OnceValues(func() (*yaml.Validator, error) {
	return yaml.NewValidatorFromSchema(SchemaID, yaml.NewSchemaGenerator(SchemaID).Reflect(New()))
})

// Schema returns the configuration JSON schema.
func Schema() ([]byte, error) {
	return yaml.Generate(yaml.NewSchemaGenerator(SchemaID).Reflect(New()))
}

// Validator validates configuration data against a schema.
type Validator interface {
	Validate(data any) error
}

// Loader validates and decodes configuration data.
type Loader struct {
	validator Validator
	yamlError *yaml.ErrorWrapper
	data      []byte
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*Loader)

// WithValidator sets a custom validator.
func WithValidator(v Validator) LoaderOpt {
	return func(l *Loader) {
		l.validator = v
	}
}

// WithColor enables colored source excerpts in errors.
func WithColor(colored bool) LoaderOpt {
	return func(l *Loader) {
		l.yamlError.Opts = append(l.yamlError.Opts, yaml.WithColor(colored))
	}
}

func NewLoaderFromBytes(data []byte, opts ...LoaderOpt) *Loader {
	l := &Loader{
		data:      data,
		yamlError: yaml.NewErrorWrapper(yaml.WithSource(data)),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

func NewLoaderFromFile(path string, opts ...LoaderOpt) (*Loader, error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return NewLoaderFromBytes(data, opts...), nil
}

// Validate validates configuration data with the [Validator] without loading
// it into a [Config] struct.
func (l *Loader) Validate() error {
	validator := l.validator
	if validator == nil {
		v, err := defaultValidator()
		if err != nil {
			return fmt.Errorf("create validator: %w", err)
		}

		validator = v
	}

	// Decode into interface{} for initial validation.
	var anyConfig any

	err := yaml.NewDecoder(bytes.NewReader(l.data)).Decode(&anyConfig)
	if err != nil {
		return l.yamlError.Wrap(err)
	}

	err = validator.Validate(anyConfig)
	if err != nil {
		return l.yamlError.Wrap(err)
	}

	return nil
}

// Load validates and decodes the configuration.
func (l *Loader) Load() (*Config, error) {
	err := l.Validate()
	if err != nil {
		return nil, err
	}

	c := New()

	err = yaml.NewDecoder(bytes.NewReader(l.data)).Decode(c)
	if err != nil {
		return nil, l.yamlError.Wrap(err)
	}

	// Run Go validation on the config (for requirements that can't be represented in the schema).
	err = c.Validate()
	if err != nil {
		return nil, err
	}

	return c, nil
}
