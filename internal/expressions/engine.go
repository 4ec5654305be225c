package expressions

import (
	"context"
	"sync"

	"github.com/rendis/dsviz/pkg/schema"
)

// Engine evaluates user-supplied expressions.
// Three implementations: Expr (pacing rules), CEL (item filters), GoJQ
// (trace queries).
type Engine interface {
	Name() string
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}

// programCache memoizes compiled programs by expression text. Each text is
// compiled at most once; failed compilations are not cached.
type programCache[P any] struct {
	mu       sync.RWMutex
	programs map[string]P
}

func newProgramCache[P any]() *programCache[P] {
	return &programCache[P]{programs: make(map[string]P)}
}

func (c *programCache[P]) get(expression string, compile func(string) (P, error)) (P, error) {
	c.mu.RLock()
	p, ok := c.programs[expression]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.programs[expression]; ok {
		return p, nil
	}
	p, err := compile(expression)
	if err != nil {
		return p, err
	}
	c.programs[expression] = p
	return p, nil
}

func (c *programCache[P]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

func emptyExpression(engine string) error {
	return schema.NewErrorf(schema.ErrCodeValidation, "empty %s expression", engine)
}

// compileError reports a rejected expression. Bad input, so VALIDATION_ERROR.
func compileError(engine, expression string, err error) error {
	return schema.NewErrorf(schema.ErrCodeValidation, "%s compile error in %q: %s", engine, expression, err).
		WithCause(err).
		WithDetails(map[string]any{"engine": engine, "expression": expression})
}

func evalError(engine, expression string, err error) error {
	return schema.NewErrorf(schema.ErrCodeExpression, "%s evaluation failed for %q: %s", engine, expression, err).
		WithCause(err).
		WithDetails(map[string]any{"engine": engine, "expression": expression})
}
