package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/macropower/csvr/pkg/config"
	"github.com/macropower/csvr/pkg/pipeline"
	"github.com/macropower/csvr/pkg/process"
	"github.com/macropower/csvr/pkg/report"
	"github.com/macropower/csvr/pkg/rule"
	"github.com/macropower/csvr/pkg/telemetry"
	"github.com/macropower/csvr/pkg/version"
)

const (
	cmdExamples = `  # Print the records of a file matching any rule:
  csvr ./data.csv --rules rules.json

  # Process every file in a directory with 4 workers:
  csvr ./inbox -r rules.yaml -t 4

  # Move files into a staging directory before processing them:
  csvr ./inbox -r rules.json --work ./staging

  # Watch a directory, polling every 2s and waking early on new files:
  csvr ./inbox -r rules.json --work ./staging --period 2s --notify

  # Read from stdin and write JSON lines:
  cat ./data.csv | csvr - -r rules.json --format json`
)

var ErrNoRules = errors.New("no rule file given, set --rules")

type RunArgs struct {
	*RootArgs

	Input      string
	Rules      string
	Work       string
	Format     string
	ConfigPath string
	Threads    int
	Period     time.Duration
	Notify     bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{
		RootArgs: rootArgs,
	}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&ra.Rules, "rules", "r", "", "Path to the rule document (JSON or YAML)")
	cmd.Flags().IntVarP(&ra.Threads, "threads", "t", 1, "Number of workers")
	cmd.Flags().StringVarP(&ra.Work, "work", "w", "", "Staging directory files are moved into before processing")
	cmd.Flags().DurationVarP(&ra.Period, "period", "p", 0, "Poll period, enables watch mode on a directory input")
	cmd.Flags().BoolVar(&ra.Notify, "notify", false, "Wake the watcher early on file system events")
	cmd.Flags().StringVar(&ra.Format, "format", string(report.FormatText),
		fmt.Sprintf("Report format, one of: %s", report.AllFormats))
	cmd.Flags().StringVar(&ra.ConfigPath, "config", "", "Path to the csvr configuration file")

	must(cmd.MarkFlagFilename("rules", "json", "yaml", "yml"))
	must(cmd.MarkFlagFilename("config", "yaml", "yml"))
	must(cmd.MarkFlagDirname("work"))
	must(cmd.RegisterFlagCompletionFunc("format",
		cobra.FixedCompletions(report.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	))
}

func NewRunCmd(ra *RunArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run <input>",
		Short:   "Default command, can be used explicitly if the input path is ambiguous",
		Example: cmdExamples,
		Args:    cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return nil, cobra.ShellCompDirectiveDefault
			}

			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ra.Input = args[0]

			return run(cmd, ra)
		},
	}
	ra.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func run(cmd *cobra.Command, ra *RunArgs) error {
	ctx := cmd.Context()

	err := ra.loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	if ra.Rules == "" {
		return ErrNoRules
	}

	format, err := report.GetFormat(ra.Format)
	if err != nil {
		return err
	}

	rules, err := rule.LoadAndCompile(ra.Rules)
	if err != nil {
		return fmt.Errorf("load rules %q: %w", ra.Rules, err)
	}

	slog.Debug("compiled rules",
		slog.String("path", ra.Rules),
		slog.Int("count", len(rules)),
	)

	src, err := pipeline.NewSource(pipeline.SourceOptions{
		Stdin:  cmd.InOrStdin(),
		Input:  ra.Input,
		Work:   ra.Work,
		Period: ra.Period,
		Notify: ra.Notify,
	})
	if err != nil {
		return fmt.Errorf("create source: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, ra.TraceEndpoint, version.GetVersion())
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	defer func() {
		err := shutdown(context.WithoutCancel(ctx))
		if err != nil {
			slog.Error("shutdown tracing", slog.Any("err", err))
		}
	}()

	p, err := pipeline.New(
		process.New(rules),
		report.NewPrinter(cmd.OutOrStdout(), format),
		pipeline.WithWorkers(ra.Threads),
	)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	sum, err := p.Run(ctx, src)

	slog.Info("run complete", report.SummaryAttrs(sum)...)

	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return nil
}

// loadConfig reads the configuration file and applies each value whose flag
// was neither passed on the command line nor set through the environment.
// A missing file is only an error when its path was given explicitly.
func (ra *RunArgs) loadConfig(flags *pflag.FlagSet) error {
	configPath := ra.ConfigPath
	if configPath == "" {
		configPath = config.GetPath()
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		if ra.ConfigPath == "" && errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no config file, using defaults", slog.String("path", configPath))

			return nil
		}

		return err
	}

	slog.Debug("loaded config", slog.String("path", configPath))

	values := map[string]string{}
	if cfg.Threads != nil {
		values["threads"] = strconv.Itoa(*cfg.Threads)
	}
	if cfg.Work != nil {
		values["work"] = *cfg.Work
	}
	if cfg.Period != nil {
		values["period"] = cfg.Period.String()
	}
	if cfg.Notify != nil {
		values["notify"] = strconv.FormatBool(*cfg.Notify)
	}
	if cfg.Format != nil {
		values["format"] = *cfg.Format
	}

	for name, v := range values {
		if !fromConfig(flags, name) {
			continue
		}

		err := flags.Set(name, v)
		if err != nil {
			return fmt.Errorf("config %q: %s: %w", configPath, name, err)
		}
	}

	return nil
}

// fromConfig reports whether the flag may take its value from the
// configuration file.
func fromConfig(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	if f == nil || f.Changed {
		return false
	}

	_, ok := os.LookupEnv(flagToEnvName(name))

	return !ok
}
