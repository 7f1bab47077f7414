// Package definition encodes and decodes the stored automator definition
// document, screening documents read from storage so a corrupt definition
// never takes the editor down.
package definition

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/guidely/automator/pkg/graph"
	"github.com/guidely/automator/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// documentSchema is the structural contract for a stored definition: the
// React-Flow shaped nodes/edges/viewport document of the wire format.
// Payload semantics (data matching the node type, edges referencing live
// nodes) are checked by graph.FromDefinition after the schema pass.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []string{"nodes", "edges", "viewport"},
	"properties": map[string]any{
		"nodes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "type", "position", "data"},
				"properties": map[string]any{
					"id":   map[string]any{"type": "string", "minLength": 1},
					"type": map[string]any{"enum": []any{"start", "end", "decision", "dataCollection"}},
					"position": map[string]any{
						"type":     "object",
						"required": []string{"x", "y"},
						"properties": map[string]any{
							"x": map[string]any{"type": "number"},
							"y": map[string]any{"type": "number"},
						},
					},
					"data": map[string]any{"type": "object"},
				},
			},
		},
		"edges": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "source", "target"},
				"properties": map[string]any{
					"id":           map[string]any{"type": "string", "minLength": 1},
					"source":       map[string]any{"type": "string", "minLength": 1},
					"target":       map[string]any{"type": "string", "minLength": 1},
					"sourceHandle": map[string]any{"type": "string"},
					"targetHandle": map[string]any{"type": "string"},
					"label":        map[string]any{"type": "string"},
				},
			},
		},
		"viewport": map[string]any{
			"type":     "object",
			"required": []string{"x", "y", "zoom"},
			"properties": map[string]any{
				"x":    map[string]any{"type": "number"},
				"y":    map[string]any{"type": "number"},
				"zoom": map[string]any{"type": "number"},
			},
		},
	},
}

// Encode serializes a definition for storage.
func Encode(def models.Definition) ([]byte, error) {
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("failed to encode definition: %w", err)
	}

	return raw, nil
}

// Decode parses and fully checks a stored definition document: JSON shape
// against the document schema, then structural integrity (known node types,
// unique ids, live edge endpoints) by loading it into a graph.
func Decode(raw []byte) (models.Definition, error) {
	if err := screen(raw); err != nil {
		return models.Definition{}, err
	}

	var def models.Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return models.Definition{}, fmt.Errorf("failed to decode definition: %w", err)
	}

	g, err := graph.FromDefinition(def)
	if err != nil {
		return models.Definition{}, err
	}

	return g.ToDefinition(), nil
}

// DecodeLenient decodes a stored definition, substituting an empty graph when
// the document is missing or malformed so the editor remains usable. The
// second return value reports whether recovery happened.
func DecodeLenient(raw []byte, logger *slog.Logger, automatorID string) (models.Definition, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return models.EmptyDefinition(), true
	}

	def, err := Decode(raw)
	if err != nil {
		logger.Warn("stored definition is malformed; substituting an empty graph",
			"automator_id", automatorID, "error", err)

		return models.EmptyDefinition(), true
	}

	return def, false
}

// screen validates the raw document against the definition schema.
func screen(raw []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(documentSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate definition document: %w", err)
	}

	if !result.Valid() {
		first := result.Errors()[0]

		return fmt.Errorf("%w: %s", graph.ErrMalformedDefinition, first.String())
	}

	return nil
}
