package v1beta1_test

import (
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"

	"github.com/macropower/csvr/api/v1beta1"
)

func TestNewTypeMeta(t *testing.T) {
	t.Parallel()

	tm := v1beta1.NewTypeMeta("Configuration")

	assert.Equal(t, v1beta1.APIVersion, tm.GetAPIVersion())
	assert.Equal(t, "Configuration", tm.GetKind())
}

func newSchema(props ...string) *jsonschema.Schema {
	jss := &jsonschema.Schema{
		Properties: jsonschema.NewProperties(),
	}
	for _, p := range props {
		jss.Properties.Set(p, &jsonschema.Schema{Type: "string"})
	}

	return jss
}

func TestExtendSchemaWithEnums(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		apiVersions []string
		kinds       []string
	}{
		"single API version": {
			apiVersions: []string{v1beta1.APIVersion},
			kinds:       []string{"Configuration"},
		},
		"multiple API versions": {
			apiVersions: []string{"v1", "v1beta1", "v1alpha1"},
			kinds:       []string{"Configuration"},
		},
		"multiple kinds": {
			apiVersions: []string{"v1"},
			kinds:       []string{"Kind1", "Kind2", "Kind3"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			jss := newSchema("apiVersion", "kind")

			v1beta1.ExtendSchemaWithEnums(jss, tc.apiVersions, tc.kinds)

			apiVersion, ok := jss.Properties.Get("apiVersion")
			assert.True(t, ok)
			assert.Len(t, apiVersion.OneOf, len(tc.apiVersions))

			kind, ok := jss.Properties.Get("kind")
			assert.True(t, ok)
			assert.Len(t, kind.OneOf, len(tc.kinds))

			for i, v := range tc.apiVersions {
				assert.Equal(t, v, apiVersion.OneOf[i].Const)
			}

			for i, k := range tc.kinds {
				assert.Equal(t, k, kind.OneOf[i].Const)
			}
		})
	}
}

func TestExtendSchemaWithEnumsPanics(t *testing.T) {
	t.Parallel()

	tcs := map[string][]string{
		"missing apiVersion": {"kind"},
		"missing kind":       {"apiVersion"},
	}

	for name, props := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Panics(t, func() {
				v1beta1.ExtendSchemaWithEnums(newSchema(props...), []string{"v1"}, []string{"Kind1"})
			})
		})
	}
}
