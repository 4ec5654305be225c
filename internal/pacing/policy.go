package pacing

import (
	"context"
	"fmt"
	"time"

	"github.com/rendis/dsviz/internal/expressions"
	"github.com/rendis/dsviz/pkg/schema"
)

// DelayPolicy decides how long to wait after publishing a frame.
type DelayPolicy interface {
	Delay(f Frame) time.Duration
}

// FixedDelay waits the same duration after every frame.
type FixedDelay time.Duration

func (d FixedDelay) Delay(Frame) time.Duration { return time.Duration(d) }

// TableDelay looks the frame's operation up in a table, falling back to
// Default.
type TableDelay struct {
	Table   map[string]time.Duration
	Default time.Duration
}

func (t TableDelay) Delay(f Frame) time.Duration {
	if d, ok := t.Table[f.Operation]; ok {
		return d
	}
	return t.Default
}

// OperationTable is the per-operation timing used for the linked list:
// quick hops, slower structural changes, long pauses on results.
func OperationTable() TableDelay {
	return TableDelay{
		Table: map[string]time.Duration{
			"CREATE_NODE":  1000 * time.Millisecond,
			"TRAVERSE":     600 * time.Millisecond,
			"COMPARE":      700 * time.Millisecond,
			"LINK_NODE":    900 * time.Millisecond,
			"RELINK":       900 * time.Millisecond,
			"FOUND":        1200 * time.Millisecond,
			"FOUND_TARGET": 1200 * time.Millisecond,
			"COMPLETE":     1500 * time.Millisecond,
		},
		Default: 800 * time.Millisecond,
	}
}

// ChannelDefaults returns the stock policy of every broadcast channel.
func ChannelDefaults() map[string]DelayPolicy {
	return map[string]DelayPolicy{
		schema.ChannelArray:      FixedDelay(700 * time.Millisecond),
		schema.ChannelList:       OperationTable(),
		schema.ChannelStack:      FixedDelay(800 * time.Millisecond),
		schema.ChannelQueue:      FixedDelay(800 * time.Millisecond),
		schema.ChannelTree:       FixedDelay(900 * time.Millisecond),
		schema.ChannelPathfind:   FixedDelay(100 * time.Millisecond),
		schema.ChannelTraversal:  FixedDelay(300 * time.Millisecond),
		schema.ChannelAlgorithms: FixedDelay(500 * time.Millisecond),
	}
}

// ExprDelay evaluates an expr-lang rule per frame. The rule sees tag,
// step, total and terminal and must return a number of milliseconds.
// Evaluation errors fall back to Fallback.
type ExprDelay struct {
	engine   *expressions.ExprEngine
	rule     string
	Fallback time.Duration
}

// NewExprDelay compiles rule up front so a broken rule fails at startup.
func NewExprDelay(engine *expressions.ExprEngine, rule string, fallback time.Duration) (*ExprDelay, error) {
	if engine == nil {
		engine = expressions.NewExprEngine()
	}
	if err := engine.Compile(rule, frameEnv(Frame{})); err != nil {
		return nil, fmt.Errorf("pacing rule: %w", err)
	}
	return &ExprDelay{engine: engine, rule: rule, Fallback: fallback}, nil
}

func (e *ExprDelay) Delay(f Frame) time.Duration {
	out, err := e.engine.Evaluate(context.Background(), e.rule, frameEnv(f))
	if err != nil {
		return e.Fallback
	}
	ms, ok := toMillis(out)
	if !ok || ms < 0 {
		return e.Fallback
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func frameEnv(f Frame) map[string]any {
	return map[string]any{
		"tag":      f.Operation,
		"step":     f.StepNumber,
		"total":    f.TotalSteps,
		"terminal": f.Terminal,
	}
}

func toMillis(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
