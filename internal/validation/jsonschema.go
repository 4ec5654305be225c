package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/dsviz/pkg/schema"
)

const schemaBase = "https://dsviz.dev/schemas/"

// schemaDocs holds the JSON Schema of every Document. Embedded as constants
// to avoid filesystem dependencies.
var schemaDocs = map[Document]string{
	DocGraph: `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["nodes", "edges"],
  "properties": {
    "name": { "type": "string" },
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": { "type": "string", "minLength": 1 },
          "label": { "type": "string" },
          "x": { "type": "number" },
          "y": { "type": "number" },
          "lat": { "type": "number", "minimum": -90, "maximum": 90 },
          "lon": { "type": "number", "minimum": -180, "maximum": 180 },
          "city": { "type": "string" }
        },
        "additionalProperties": false
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["source", "target", "weight"],
        "properties": {
          "id": { "type": "string" },
          "source": { "type": "string", "minLength": 1 },
          "target": { "type": "string", "minLength": 1 },
          "weight": { "type": "number", "minimum": 0 },
          "distance_km": { "type": "number", "minimum": 0 },
          "minutes": { "type": "integer", "minimum": 0 },
          "road": { "type": "string" }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`,
	DocItem: `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["filename"],
  "properties": {
    "id": { "type": "string" },
    "filename": { "type": "string", "minLength": 1, "maxLength": 255 },
    "content_type": { "type": "string" },
    "size": { "type": "integer", "minimum": 0 },
    "status": { "enum": ["idle", "inserting", "searching", "deleting", "found"] },
    "uploaded_at": { "type": "string", "format": "date-time" }
  }
}`,
	DocOperation: `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["structure", "operation"],
  "properties": {
    "structure": { "enum": ["array", "list", "stack", "queue", "tree"] },
    "operation": {
      "enum": ["insert", "delete", "search", "access", "resize", "push", "pop", "peek", "enqueue", "dequeue", "clear"]
    },
    "item": { "$ref": "item.json" },
    "name": { "type": "string" },
    "index": { "type": "integer" },
    "capacity": { "type": "integer", "minimum": 0 }
  },
  "additionalProperties": false
}`,
	DocSort: `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["algorithm", "array"],
  "properties": {
    "algorithm": { "enum": ["bubble", "insertion", "selection", "quick"] },
    "array": { "type": "array", "items": { "type": "integer" }, "maxItems": 200 }
  },
  "additionalProperties": false
}`,
	DocSearch: `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["algorithm", "array", "target"],
  "properties": {
    "algorithm": { "enum": ["linear", "binary", "jump", "interpolation"] },
    "array": { "type": "array", "items": { "type": "integer" }, "maxItems": 1000 },
    "target": { "type": "integer" }
  },
  "additionalProperties": false
}`,
	DocTraverse: `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["algorithm"],
  "properties": {
    "algorithm": { "enum": ["bfs", "dfs", "inorder", "preorder", "postorder"] },
    "structure": { "enum": ["tree", "graph"] },
    "values": { "type": "array", "items": { "type": "string" } },
    "graph": { "$ref": "graph.json" },
    "map": { "type": "string" },
    "start": { "type": "string" }
  },
  "additionalProperties": false
}`,
	DocPath: `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["algorithm", "start"],
  "properties": {
    "algorithm": { "enum": ["dijkstra", "astar", "bfs"] },
    "province": { "type": "string" },
    "graph": { "$ref": "graph.json" },
    "start": { "type": "string", "minLength": 1 },
    "end": { "type": "string" },
    "heuristic_scale": { "type": "number", "exclusiveMinimum": 0 }
  },
  "anyOf": [
    { "required": ["province"] },
    { "required": ["graph"] }
  ],
  "additionalProperties": false
}`,
}

// JSONSchemaValidator implements Validator with every schema compiled up
// front. It is safe for concurrent use.
type JSONSchemaValidator struct {
	schemas map[Document]*jsonschema.Schema
}

// NewJSONSchemaValidator compiles every embedded schema.
func NewJSONSchemaValidator() (*JSONSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	for doc, src := range schemaDocs {
		parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("unmarshal %s schema: %w", doc, err)
		}
		if err := c.AddResource(schemaURL(doc), parsed); err != nil {
			return nil, fmt.Errorf("add %s schema resource: %w", doc, err)
		}
	}

	v := &JSONSchemaValidator{schemas: make(map[Document]*jsonschema.Schema, len(schemaDocs))}
	for doc := range schemaDocs {
		compiled, err := c.Compile(schemaURL(doc))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", doc, err)
		}
		v.schemas[doc] = compiled
	}
	return v, nil
}

func schemaURL(doc Document) string {
	return schemaBase + string(doc) + ".json"
}

// Validate checks a raw JSON body against the named schema.
func (v *JSONSchemaValidator) Validate(doc Document, raw []byte) error {
	compiled, ok := v.schemas[doc]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeValidation, "no schema named %q", doc)
	}
	if len(raw) == 0 {
		return schema.NewError(schema.ErrCodeValidation, "empty body")
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "malformed JSON").WithCause(err)
	}
	if err := compiled.Validate(inst); err != nil {
		return toVizError(err)
	}
	return nil
}

// ValidateValue validates any Go value by round-tripping it through JSON.
func (v *JSONSchemaValidator) ValidateValue(doc Document, val any) error {
	b, err := json.Marshal(val)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize value").WithCause(err)
	}
	return v.Validate(doc, b)
}

// toVizError converts a jsonschema.ValidationError into a VizError with
// one message per violated leaf.
func toVizError(err error) *schema.VizError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
