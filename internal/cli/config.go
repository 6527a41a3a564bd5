package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/csvr/pkg/config"
)

type ConfigArgs struct {
	*RootArgs

	ConfigPath  string
	WriteConfig bool
}

func NewConfigArgs(rootArgs *RootArgs) *ConfigArgs {
	return &ConfigArgs{
		RootArgs: rootArgs,
	}
}

func (ca *ConfigArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ca.ConfigPath, "config", "", "Path to the csvr configuration file")
	cmd.Flags().BoolVar(&ca.WriteConfig, "write", false, "Write the default configuration file if none exists")

	must(cmd.MarkFlagFilename("config", "yaml", "yml"))
}

func NewConfigCmd(ca *ConfigArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the active configuration, or write the default one",
		Example: `  # Print the configuration file that would be used:
  csvr config

  # Create the default configuration file:
  csvr config --write`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath := ca.ConfigPath
			if configPath == "" {
				configPath = config.GetPath()
			}

			if ca.WriteConfig {
				return config.Default().Write(configPath)
			}

			cfg, err := loadConfigFile(configPath)
			if errors.Is(err, fs.ErrNotExist) {
				slog.Info("no config file, showing defaults", slog.String("path", configPath))

				cfg, err = config.Default(), nil
			}
			if err != nil {
				return err
			}

			b, err := cfg.MarshalYAML()
			if err != nil {
				return fmt.Errorf("marshal config yaml: %w", err)
			}

			mustN(cmd.OutOrStdout().Write(b))

			return nil
		},
	}
	ca.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func loadConfigFile(path string) (*config.Config, error) {
	cl, err := config.NewLoaderFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}

	cfg, err := cl.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return cfg, nil
}
