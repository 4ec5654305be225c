package expressions

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/rendis/dsviz/pkg/schema"
)

// CELEngine evaluates Common Expression Language predicates over catalog
// items. Expressions see a single variable:
//   - item: map(string, dyn) with id, filename, content_type, size, status
type CELEngine struct {
	env   *cel.Env
	cache *programCache[cel.Program]
}

// NewCELEngine creates a new CEL expression engine.
func NewCELEngine() (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &CELEngine{env: env, cache: newProgramCache[cel.Program]()}, nil
}

func (e *CELEngine) Name() string { return "cel" }

// Evaluate runs expression against data["item"]. A missing item evaluates
// against an empty map.
func (e *CELEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	prg, err := e.program(expression)
	if err != nil {
		return nil, err
	}

	item, ok := data["item"]
	if !ok || item == nil {
		item = map[string]any{}
	}
	out, _, err := prg.ContextEval(ctx, map[string]any{"item": item})
	if err != nil {
		return nil, evalError(e.Name(), expression, err)
	}
	return out.Value(), nil
}

// Match evaluates a predicate and requires a boolean result.
func (e *CELEngine) Match(ctx context.Context, expression string, item map[string]any) (bool, error) {
	out, err := e.Evaluate(ctx, expression, map[string]any{"item": item})
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, schema.NewErrorf(schema.ErrCodeExpression,
			"CEL filter %q returned %T, want bool", expression, out).
			WithDetails(map[string]any{"engine": e.Name(), "expression": expression})
	}
	return b, nil
}

func (e *CELEngine) program(expression string) (cel.Program, error) {
	if expression == "" {
		return nil, emptyExpression(e.Name())
	}
	return e.cache.get(expression, func(src string) (cel.Program, error) {
		ast, issues := e.env.Compile(src)
		if issues != nil && issues.Err() != nil {
			return nil, compileError(e.Name(), src, issues.Err())
		}
		prg, err := e.env.Program(ast)
		if err != nil {
			return nil, compileError(e.Name(), src, err)
		}
		return prg, nil
	})
}

var _ Engine = (*CELEngine)(nil)
