package rule_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/csvr/api"
	"github.com/macropower/csvr/pkg/expr"
	"github.com/macropower/csvr/pkg/rule"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	ctx := expr.NewContext([]string{"A", "B", "C"}, []string{"1", "2", "1"})

	tcs := map[string]struct {
		rule    rule.Rule
		want    bool
		wantErr bool
	}{
		"native by default": {
			rule: rule.Rule{Rule: "A == C"},
			want: true,
		},
		"explicit native": {
			rule: rule.Rule{Rule: "A == B", Lang: rule.LangExpr},
			want: false,
		},
		"cel": {
			rule: rule.Rule{Rule: "row.A == row.C", Lang: rule.LangCEL},
			want: true,
		},
		"native syntax error": {
			rule:    rule.Rule{Rule: "A =="},
			wantErr: true,
		},
		"cel syntax error": {
			rule:    rule.Rule{Rule: "row.A ==", Lang: rule.LangCEL},
			wantErr: true,
		},
		"unknown language": {
			rule:    rule.Rule{Rule: "A == C", Lang: "lua"},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := rule.Compile(tc.rule)
			if tc.wantErr {
				require.ErrorIs(t, err, rule.ErrCompile)
				assert.Contains(t, err.Error(), "can't compile rule: "+tc.rule.Rule+": ")

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, c.Match(ctx))
			assert.Equal(t, tc.rule.Rule, c.String())
		})
	}
}

func TestCompileAllFailsFast(t *testing.T) {
	t.Parallel()

	_, err := rule.CompileAll([]rule.Rule{
		{Rule: "A == C"},
		{Rule: "nope(A)"},
		{Rule: "B == C"},
	})
	require.ErrorIs(t, err, rule.ErrCompile)
	require.ErrorIs(t, err, expr.ErrUnknownFunction)
	assert.Contains(t, err.Error(), "nope(A)")
}

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		data    string
		want    []rule.Rule
		format  rule.Format
		wantErr bool
	}{
		"json": {
			data:   `[{"rule": "A == C"}, {"rule": "(A + B) == C", "name": "sum"}]`,
			format: rule.FormatJSON,
			want: []rule.Rule{
				{Rule: "A == C"},
				{Rule: "(A + B) == C", Name: "sum"},
			},
		},
		"yaml": {
			data:   "- rule: A == C\n- rule: row.A > 1.0\n  lang: cel\n",
			format: rule.FormatYAML,
			want: []rule.Rule{
				{Rule: "A == C"},
				{Rule: "row.A > 1.0", Lang: rule.LangCEL},
			},
		},
		"empty list": {
			data:   `[]`,
			format: rule.FormatJSON,
			want:   []rule.Rule{},
		},
		"malformed json": {
			data:    `[{"rule": "A == C"`,
			format:  rule.FormatJSON,
			wantErr: true,
		},
		"missing rule field": {
			data:    `[{"name": "x"}]`,
			format:  rule.FormatJSON,
			wantErr: true,
		},
		"extra fields": {
			data:   `[{"rule": "A == C", "id": 1, "expr": "B"}]`,
			format: rule.FormatJSON,
			want:   []rule.Rule{{Rule: "A == C"}},
		},
		"unknown language": {
			data:    "- rule: A == C\n  lang: lua\n",
			format:  rule.FormatYAML,
			wantErr: true,
		},
		"object instead of list": {
			data:    `{"rule": "A == C"}`,
			format:  rule.FormatJSON,
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := rule.Parse([]byte(tc.data), tc.format)
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLoadAndCompile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"rule": "A == C"}]`), 0o600))

	yamlPath := filepath.Join(dir, "rules.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("- rule: A == C\n"), 0o600))

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`[{"rule": "A &"}]`), 0o600))

	for _, path := range []string{jsonPath, yamlPath} {
		rules, err := rule.LoadAndCompile(path)
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "A == C", rules[0].String())
	}

	_, err := rule.LoadAndCompile(badPath)
	require.ErrorIs(t, err, rule.ErrCompile)

	_, err = rule.LoadAndCompile(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = rule.LoadAndCompile(dir)
	require.ErrorIs(t, err, api.ErrIsDir)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, rule.FormatYAML, rule.FormatFromPath("rules.yaml"))
	assert.Equal(t, rule.FormatYAML, rule.FormatFromPath("RULES.YML"))
	assert.Equal(t, rule.FormatJSON, rule.FormatFromPath("rules.json"))
	assert.Equal(t, rule.FormatJSON, rule.FormatFromPath("rules"))
}

func TestSchema(t *testing.T) {
	t.Parallel()

	b, err := rule.Schema()
	require.NoError(t, err)

	s := string(b)
	assert.Contains(t, s, `"type": "array"`)
	assert.Contains(t, s, `"rule"`)
	assert.Contains(t, s, `"cel"`)
	assert.Contains(t, s, rule.SchemaID)
}
