package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator reflects a JSON schema from Go types.
// Uses [github.com/invopop/jsonschema].
type SchemaGenerator struct {
	reflector *jsonschema.Reflector
	id        string
}

// NewSchemaGenerator creates a new [SchemaGenerator] for schemas published
// under the given ID.
func NewSchemaGenerator(id string) *SchemaGenerator {
	return &SchemaGenerator{
		id: id,
		reflector: &jsonschema.Reflector{
			DoNotReference: true,
			ExpandedStruct: true,
		},
	}
}

// Reflect returns the schema of v.
func (g *SchemaGenerator) Reflect(v any) *jsonschema.Schema {
	s := g.reflector.Reflect(v)
	s.ID = jsonschema.ID(g.id)

	return s
}

// ReflectList returns the schema of a top-level array of v. List items
// may carry properties beyond those of v.
func (g *SchemaGenerator) ReflectList(v any) *jsonschema.Schema {
	item := g.reflector.Reflect(v)
	item.Version = ""
	item.AdditionalProperties = nil

	return &jsonschema.Schema{
		Version: jsonschema.Version,
		ID:      jsonschema.ID(g.id),
		Type:    "array",
		Items:   item,
	}
}

// Generate returns the indented JSON encoding of s.
func Generate(s *jsonschema.Schema) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return b, nil
}
