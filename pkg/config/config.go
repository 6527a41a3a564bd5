package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/macropower/csvr/api"
	"github.com/macropower/csvr/api/v1beta1"
)

const (
	APIVersion = v1beta1.APIVersion
	Kind       = "Configuration"
)

var (
	ErrInvalidThreads = errors.New("threads must be at least 1")

	ValidAPIVersions = v1beta1.ValidAPIVersions
	ValidKinds       = []string{Kind}
)

// Duration is a [time.Duration] written as a string such as "500ms".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string

	err := unmarshal(&s)
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}

	d.Duration = v

	return nil
}

//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	v1beta1.TypeMeta `json:",inline"`

	// Threads is the number of workers.
	Threads *int `json:"threads,omitempty" jsonschema:"title=Threads,minimum=1"`
	// Work is the staging directory files are moved into before processing.
	Work *string `json:"work,omitempty" jsonschema:"title=Work Directory"`
	// Period enables watch mode on a directory input, polling at this interval.
	Period *Duration `json:"period,omitempty" jsonschema:"title=Poll Period"`
	// Notify wakes the watcher early on file system events.
	Notify *bool `json:"notify,omitempty" jsonschema:"title=Notify"`
	// Format is the report format.
	Format *string `json:"format,omitempty" jsonschema:"title=Report Format,enum=text,enum=json"`
}

// New returns an empty [Config]; every unset field keeps its flag default.
func New() *Config {
	return &Config{
		TypeMeta: v1beta1.NewTypeMeta(Kind),
	}
}

// Default returns a [Config] with every field set to its flag default.
func Default() *Config {
	var (
		threads = 1
		work    = ""
		notify  = false
		format  = "text"
	)

	c := New()
	c.Threads = &threads
	c.Work = &work
	c.Period = &Duration{}
	c.Notify = &notify
	c.Format = &format

	return c
}

// Validate checks requirements that the schema cannot express.
func (c *Config) Validate() error {
	if c.Threads != nil && *c.Threads < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreads, *c.Threads)
	}

	return nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, ValidAPIVersions, ValidKinds)

	// Durations are written as strings, not as the embedded struct.
	_, _ = jss.Properties.Set("period", &jsonschema.Schema{
		Type:        "string",
		Title:       "Poll Period",
		Description: "Poll interval for watch mode, e.g. 500ms or 2s.",
		Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
	})
}

func (c *Config) MarshalYAML() ([]byte, error) {
	return api.MarshalYAML(*c)
}

// Write writes c to path, unless a file already exists there.
func (c Config) Write(path string) error {
	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	written, err := api.WriteIfNotExists(path, b)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if written {
		slog.Info("wrote config", slog.String("path", path))
	}

	return nil
}

// GetPath returns the default configuration file path.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}
