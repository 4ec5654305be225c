package expressions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// GoJQEngine runs jq queries over traces and structure state, e.g.
// `[.[] | select(.operation == "COMPARE") | .highlighted_id]`.
type GoJQEngine struct {
	cache *programCache[*gojq.Code]
}

// NewGoJQEngine creates a new GoJQ expression engine.
func NewGoJQEngine() *GoJQEngine {
	return &GoJQEngine{cache: newProgramCache[*gojq.Code]()}
}

func (e *GoJQEngine) Name() string { return "jq" }

// Evaluate runs a jq expression with data as input. One output is returned
// as is; several are collected into []any.
func (e *GoJQEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	results, err := e.run(ctx, expression, data)
	if err != nil {
		return nil, err
	}
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// Query runs a jq expression against any JSON-encodable value, such as a
// []trace.Step, and returns every output.
func (e *GoJQEngine) Query(ctx context.Context, expression string, v any) ([]any, error) {
	input, err := toJQ(v)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, expression, input)
}

func (e *GoJQEngine) run(ctx context.Context, expression string, input any) ([]any, error) {
	if expression == "" {
		return nil, emptyExpression(e.Name())
	}
	code, err := e.cache.get(expression, compileJQ)
	if err != nil {
		return nil, err
	}

	results := []any{}
	iter := code.RunWithContext(ctx, input)
	for {
		val, ok := iter.Next()
		if !ok {
			return results, nil
		}
		if err, isErr := val.(error); isErr {
			return nil, evalError(e.Name(), expression, err)
		}
		results = append(results, val)
	}
}

// compileJQ parses and compiles a query with an empty environment, so $ENV
// and env expose nothing of the process.
func compileJQ(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, compileError("jq", expression, err)
	}
	code, err := gojq.Compile(query, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, compileError("jq", expression, err)
	}
	return code, nil
}

// toJQ converts v into the plain maps, slices and float64 numbers gojq
// expects by round-tripping it through JSON.
func toJQ(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jq input: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode jq input: %w", err)
	}
	return out, nil
}

var _ Engine = (*GoJQEngine)(nil)
