package validation

import (
	"encoding/json"

	"github.com/rendis/dsviz/internal/algorithms"
	"github.com/rendis/dsviz/pkg/schema"
)

// GraphValidator runs the two-stage graph pipeline:
// 1. Structural (JSON Schema)
// 2. Semantic (unique ids, edge endpoints)
type GraphValidator struct {
	jsonSchema *JSONSchemaValidator
}

// NewGraphValidator creates a GraphValidator on top of v, or a fresh
// JSONSchemaValidator when v is nil.
func NewGraphValidator(v *JSONSchemaValidator) (*GraphValidator, error) {
	if v == nil {
		var err error
		if v, err = NewJSONSchemaValidator(); err != nil {
			return nil, err
		}
	}
	return &GraphValidator{jsonSchema: v}, nil
}

// Check validates a raw graph document and returns the aggregated result
// along with the decoded document. Structural errors short-circuit the
// semantic stage.
func (gv *GraphValidator) Check(raw []byte) (algorithms.Document, *schema.ValidationResult) {
	result := validateStructural(gv.jsonSchema, DocGraph, raw)
	if !result.Valid() {
		return algorithms.Document{}, result
	}

	var doc algorithms.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		result.AddError("/", schema.ErrCodeValidation, err.Error())
		return algorithms.Document{}, result
	}

	result.Merge(validateGraphSemantic(doc))
	return doc, result
}

// Decode validates a raw graph document and builds the graph. Warnings are
// not errors.
func (gv *GraphValidator) Decode(raw []byte) (*algorithms.Graph, error) {
	doc, result := gv.Check(raw)
	if err := result.ToError(); err != nil {
		return nil, err
	}
	return doc.Graph(), nil
}

// CheckDocument runs the semantic stage alone on an already decoded
// document, for sources that are not JSON.
func CheckDocument(doc algorithms.Document) *schema.ValidationResult {
	return validateGraphSemantic(doc)
}

// validateStructural converts the schema error of one document into a
// ValidationResult, one issue per violation.
func validateStructural(v *JSONSchemaValidator, doc Document, raw []byte) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	err := v.Validate(doc, raw)
	if err == nil {
		return result
	}

	vErr, ok := err.(*schema.VizError)
	if !ok {
		result.AddError("/", schema.ErrCodeValidation, err.Error())
		return result
	}

	if vErr.Details != nil {
		if violations, ok := vErr.Details["violations"].([]string); ok {
			for _, msg := range violations {
				result.AddError("/", schema.ErrCodeValidation, msg)
			}
			return result
		}
	}
	result.AddError("/", schema.ErrCodeValidation, vErr.Message)
	return result
}
