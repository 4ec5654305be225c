package expressions

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprEngine evaluates expr-lang expressions. Pacing rules use it to turn a
// step's tag and position into a delay, e.g.
//
//	tag in ["COMPARE", "TRAVERSE"] ? 300 : (terminal ? 1500 : 800)
type ExprEngine struct {
	cache *programCache[*vm.Program]
}

// NewExprEngine creates a new Expr expression engine.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{cache: newProgramCache[*vm.Program]()}
}

func (e *ExprEngine) Name() string { return "expr" }

// Compile checks an expression against a sample environment and caches the
// program, so a bad rule fails at startup rather than mid-animation.
func (e *ExprEngine) Compile(expression string, sample map[string]any) error {
	_, err := e.program(expression, sample)
	return err
}

// Evaluate runs expression with data as the environment. Variables missing
// from data evaluate to nil.
func (e *ExprEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prg, err := e.program(expression, data)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	out, err := vm.Run(prg, data)
	if err != nil {
		return nil, evalError(e.Name(), expression, err)
	}
	return out, nil
}

// program compiles against the first environment seen for expression; later
// environments must have compatible variable types.
func (e *ExprEngine) program(expression string, env map[string]any) (*vm.Program, error) {
	if expression == "" {
		return nil, emptyExpression(e.Name())
	}
	if env == nil {
		env = map[string]any{}
	}
	return e.cache.get(expression, func(src string) (*vm.Program, error) {
		prg, err := expr.Compile(src, expr.Env(env), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, compileError(e.Name(), src, err)
		}
		return prg, nil
	})
}

var _ Engine = (*ExprEngine)(nil)
