package cli_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/csvr/internal/cli"
)

func TestBindEnvVars(t *testing.T) {
	tcs := map[string]struct {
		envVars       map[string]string
		wantLogLevel  string
		wantLogFormat string
		wantThreads   int
		wantPeriod    time.Duration
		args          []string
	}{
		"environment variables are bound when no args provided": {
			envVars: map[string]string{
				"CSVR_LOG_LEVEL":  "debug",
				"CSVR_LOG_FORMAT": "json",
				"CSVR_THREADS":    "4",
				"CSVR_PERIOD":     "2s",
			},
			args:          []string{},
			wantLogLevel:  "debug",
			wantLogFormat: "json",
			wantThreads:   4,
			wantPeriod:    2 * time.Second,
		},
		"command line args take precedence over environment variables": {
			envVars: map[string]string{
				"CSVR_LOG_LEVEL":  "debug",
				"CSVR_LOG_FORMAT": "json",
				"CSVR_THREADS":    "4",
			},
			args:          []string{"--log-level", "error", "--log-format", "text", "-t", "2"},
			wantLogLevel:  "error",
			wantLogFormat: "text",
			wantThreads:   2,
		},
		"partial environment variable override": {
			envVars: map[string]string{
				"CSVR_LOG_LEVEL": "warn",
			},
			args:          []string{"--log-format", "json", "--period", "500ms"},
			wantLogLevel:  "warn",
			wantLogFormat: "json",
			wantThreads:   1,
			wantPeriod:    500 * time.Millisecond,
		},
		"no environment variables uses defaults": {
			envVars:       map[string]string{},
			args:          []string{},
			wantLogLevel:  "info",
			wantLogFormat: "text",
			wantThreads:   1,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			for key, val := range tc.envVars {
				t.Setenv(key, val)
			}

			cmd := cli.NewRootCmd()
			cmd.SetArgs(tc.args)

			// Parse flags (this triggers environment variable binding).
			err := cmd.ParseFlags(tc.args)
			require.NoError(t, err)

			logLevel, err := cmd.Flags().GetString("log-level")
			require.NoError(t, err)
			assert.Equal(t, tc.wantLogLevel, logLevel)

			logFormat, err := cmd.Flags().GetString("log-format")
			require.NoError(t, err)
			assert.Equal(t, tc.wantLogFormat, logFormat)

			threads, err := cmd.Flags().GetInt("threads")
			require.NoError(t, err)
			assert.Equal(t, tc.wantThreads, threads)

			period, err := cmd.Flags().GetDuration("period")
			require.NoError(t, err)
			assert.Equal(t, tc.wantPeriod, period)
		})
	}
}

// Test that flag usage strings are updated to include environment variable names.
func TestEnvironmentVariableUsageUpdate(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCmd()

	logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logLevelFlag)
	assert.Contains(t, logLevelFlag.Usage, "$CSVR_LOG_LEVEL")

	rulesFlag := cmd.Flags().Lookup("rules")
	require.NotNil(t, rulesFlag)
	assert.Contains(t, rulesFlag.Usage, "$CSVR_RULES")

	traceFlag := cmd.PersistentFlags().Lookup("trace-endpoint")
	require.NotNil(t, traceFlag)
	assert.Contains(t, traceFlag.Usage, "$CSVR_TRACE_ENDPOINT")
}
