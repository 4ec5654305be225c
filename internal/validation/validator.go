package validation

// Document names one of the embedded schemas.
type Document string

const (
	DocGraph     Document = "graph"
	DocItem      Document = "item"
	DocOperation Document = "operation"
	DocSort      Document = "sort"
	DocSearch    Document = "search"
	DocTraverse  Document = "traverse"
	DocPath      Document = "path"
)

// Validator checks request bodies and graph documents before they reach
// the simulators. Uses JSON Schema Draft 2020-12.
type Validator interface {
	Validate(doc Document, raw []byte) error
	ValidateValue(doc Document, v any) error
}
