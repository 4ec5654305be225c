package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/dsviz/internal/algorithms"
	"github.com/rendis/dsviz/pkg/schema"
)

func newGraphValidator(t *testing.T) *GraphValidator {
	t.Helper()
	gv, err := NewGraphValidator(nil)
	require.NoError(t, err)
	return gv
}

func TestGraphValidator_Decode(t *testing.T) {
	raw := []byte(`{"name":"tri","nodes":[{"id":"A","x":0,"y":0},{"id":"B","x":1,"y":0},{"id":"C","x":1,"y":1}],
		"edges":[{"source":"A","target":"B","weight":1},{"source":"B","target":"C","weight":2}]}`)

	g, err := newGraphValidator(t).Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, g.NodeIDs())
	assert.Len(t, g.Edges, 2)
}

func TestGraphValidator_StructuralShortCircuits(t *testing.T) {
	raw := []byte(`{"nodes":[{"id":"A"},{"id":"A"}],"edges":[{"source":"A","target":"B"}]}`)

	_, result := newGraphValidator(t).Check(raw)
	require.False(t, result.Valid())
	for _, issue := range result.Errors() {
		assert.Equal(t, schema.ErrCodeValidation, issue.Code, "semantic stage must not run")
	}
}

func TestGraphValidator_Semantic(t *testing.T) {
	raw := []byte(`{"nodes":[{"id":"A"},{"id":"A"},{"id":"B"},{"id":"Z"}],
		"edges":[{"source":"A","target":"B","weight":1},{"source":"A","target":"Q","weight":1},{"source":"B","target":"B","weight":0}]}`)

	_, result := newGraphValidator(t).Check(raw)
	require.False(t, result.Valid())

	codes := map[string]int{}
	for _, issue := range result.Errors() {
		codes[issue.Code]++
	}
	assert.Equal(t, 1, codes[CodeDuplicateNode])
	assert.Equal(t, 1, codes[CodeDanglingEdge])

	warnings := map[string]int{}
	for _, issue := range result.Warnings() {
		warnings[issue.Code]++
	}
	assert.Equal(t, 1, warnings[CodeSelfLoop])
	assert.Equal(t, 1, warnings[CodeIsolatedNode])

	_, err := newGraphValidator(t).Decode(raw)
	require.Error(t, err)
	assert.True(t, schema.IsCode(err, schema.ErrCodeValidation))
}

func TestGraphValidator_WarningsAreNotErrors(t *testing.T) {
	raw := []byte(`{"nodes":[{"id":"A"},{"id":"B"},{"id":"C"}],"edges":[{"source":"A","target":"B","weight":3}]}`)

	g, err := newGraphValidator(t).Decode(raw)
	require.NoError(t, err)
	assert.True(t, g.HasNode("C"))
}

func TestCheckDocument(t *testing.T) {
	doc := algorithms.Document{
		Nodes: []algorithms.Node{{ID: "A"}, {ID: "B"}},
		Edges: []algorithms.Edge{{Source: "A", Target: "B", Weight: 1}},
	}
	assert.True(t, CheckDocument(doc).Valid())
	assert.Empty(t, CheckDocument(doc).Warnings())
}
