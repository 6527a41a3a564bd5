package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/csvr/internal/cli"
	"github.com/macropower/csvr/pkg/config"
	"github.com/macropower/csvr/pkg/pipeline"
	"github.com/macropower/csvr/pkg/rule"
)

const (
	people = "name;age\nalice;30\nbob;17\n"
	rules  = `[{"rule": "age >= 18", "name": "adults"}]`

	adultMatch = "Match: rule 'age >= 18' record 'alice;30'"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	// Keep the user's configuration out of the way.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer

	cmd := cli.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "people.csv", people)
	rulesPath := writeFile(t, dir, "rules.json", rules)

	for name, args := range map[string][]string{
		"default command": {input, "--rules", rulesPath},
		"run command":     {"run", input, "-r", rulesPath},
	} {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, "", args...)
			require.NoError(t, err)
			assert.Equal(t, []string{adultMatch}, lines(out))
		})
	}
}

func TestRunStdin(t *testing.T) {
	rulesPath := writeFile(t, t.TempDir(), "rules.yaml", "- rule: string_contains(name, \"o\")\n")

	out, err := execute(t, people, "-", "-r", rulesPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Match: rule 'string_contains(name, \"o\")' record 'bob;17'"}, lines(out))
}

func TestRunSnapshotStagesFiles(t *testing.T) {
	dir := t.TempDir()
	inbox := filepath.Join(dir, "inbox")
	work := filepath.Join(dir, "work")
	require.NoError(t, os.Mkdir(inbox, 0o700))
	require.NoError(t, os.Mkdir(work, 0o700))

	writeFile(t, inbox, "a.csv", people)
	writeFile(t, inbox, "b.csv", "name;age\ncarol;40\n")
	rulesPath := writeFile(t, dir, "rules.json", rules)

	out, err := execute(t, "", inbox, "-r", rulesPath, "-w", work, "-t", "2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		adultMatch,
		"Match: rule 'age >= 18' record 'carol;40'",
	}, lines(out))

	staged, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Len(t, staged, 2)

	left, err := os.ReadDir(inbox)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRunConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "people.csv", people)
	rulesPath := writeFile(t, dir, "rules.json", rules)
	configPath := writeFile(t, dir, "config.yaml", `apiVersion: csvr.macropower.dev/v1beta1
kind: Configuration
threads: 2
format: json
`)

	tcs := map[string]struct {
		env      map[string]string
		args     []string
		wantJSON bool
	}{
		"config applies": {
			args:     []string{"--config", configPath},
			wantJSON: true,
		},
		"flag beats config": {
			args: []string{"--config", configPath, "--format", "text"},
		},
		"env beats config": {
			env:  map[string]string{"CSVR_FORMAT": "text"},
			args: []string{"--config", configPath},
		},
		"config from env": {
			env:      map[string]string{"CSVR_CONFIG": configPath},
			wantJSON: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			out, err := execute(t, "", append([]string{input, "-r", rulesPath}, tc.args...)...)
			require.NoError(t, err)

			if tc.wantJSON {
				assert.JSONEq(t,
					`{"file": "`+input+`", "rule": "age >= 18", "record": ["alice", "30"]}`,
					strings.TrimSpace(out),
				)
			} else {
				assert.Equal(t, []string{adultMatch}, lines(out))
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "people.csv", people)
	rulesPath := writeFile(t, dir, "rules.json", rules)
	badRules := writeFile(t, dir, "bad.json", `[{"rule": "age >"}]`)
	badConfig := writeFile(t, dir, "bad.yaml", `apiVersion: csvr.macropower.dev/v1beta1
kind: Configuration
threads: 0
`)

	tcs := map[string]struct {
		err  error
		args []string
		msg  string
	}{
		"no rules": {
			args: []string{input},
			err:  cli.ErrNoRules,
		},
		"rule does not compile": {
			args: []string{input, "-r", badRules},
			err:  rule.ErrCompile,
		},
		"missing rule file": {
			args: []string{input, "-r", filepath.Join(dir, "missing.json")},
			err:  os.ErrNotExist,
		},
		"missing input": {
			args: []string{filepath.Join(dir, "missing.csv"), "-r", rulesPath},
			err:  os.ErrNotExist,
		},
		"watch without staging": {
			args: []string{dir, "-r", rulesPath, "--period", "1s"},
			err:  pipeline.ErrNoStaging,
		},
		"zero threads": {
			args: []string{input, "-r", rulesPath, "-t", "0"},
			err:  pipeline.ErrWorkers,
		},
		"unknown format": {
			args: []string{input, "-r", rulesPath, "--format", "xml"},
			msg:  "unknown report format",
		},
		"explicit config missing": {
			args: []string{input, "-r", rulesPath, "--config", filepath.Join(dir, "missing.yaml")},
			err:  os.ErrNotExist,
		},
		"invalid config": {
			args: []string{input, "-r", rulesPath, "--config", badConfig},
			msg:  "invalid config",
		},
		"no input": {
			args: []string{"-r", rulesPath},
			msg:  "accepts 1 arg(s), received 0",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, "", tc.args...)
			require.Error(t, err)

			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			}
			if tc.msg != "" {
				assert.Contains(t, err.Error(), tc.msg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeFile(t, dir, "rules.json", `[
		{"rule": "age >= 18"},
		{"rule": "row.age > 60.0", "lang": "cel"}
	]`)
	badRules := writeFile(t, dir, "bad.json", `[{"rule": "unknown_fn(age)"}]`)

	out, err := execute(t, "", "validate", "--rules", rulesPath)
	require.NoError(t, err)
	assert.Equal(t, rulesPath+": 2 rules ok\n", out)

	_, err = execute(t, "", "validate", "--rules", badRules)
	require.ErrorIs(t, err, rule.ErrCompile)

	_, err = execute(t, "", "validate")
	require.ErrorIs(t, err, cli.ErrNoRules)
}

func TestSchema(t *testing.T) {
	tcs := map[string]struct {
		want string
		args []string
	}{
		"rules by default": {
			args: []string{"schema"},
			want: rule.SchemaID,
		},
		"rules": {
			args: []string{"schema", "rules"},
			want: rule.SchemaID,
		},
		"config": {
			args: []string{"schema", "config"},
			want: config.SchemaID,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, "", tc.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tc.want)
		})
	}

	_, err := execute(t, "", "schema", "policy")
	require.Error(t, err)
}

func TestConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csvr", "config.yaml")

	out, err := execute(t, "", "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "kind: Configuration")
	assert.Contains(t, out, "threads: 1")

	_, err = execute(t, "", "config", "--config", path, "--write")
	require.NoError(t, err)
	require.FileExists(t, path)

	writeFile(t, filepath.Dir(path), "config.yaml", `apiVersion: csvr.macropower.dev/v1beta1
kind: Configuration
threads: 8
`)

	out, err = execute(t, "", "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "threads: 8")

	// Existing files are never overwritten.
	_, err = execute(t, "", "config", "--config", path, "--write")
	require.NoError(t, err)

	out, err = execute(t, "", "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "threads: 8")
}
