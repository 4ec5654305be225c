package algorithms

import (
	"errors"

	"github.com/rendis/dsviz/pkg/schema"
)

// Step is one decision point of an algorithm run.
type Step struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Sink receives steps in emission order.
type Sink func(Step)

// Collect returns a sink appending to dst.
func Collect(dst *[]Step) Sink {
	return func(s Step) { *dst = append(*dst, s) }
}

// Discard is a sink that drops every step.
func Discard(Step) {}

// ErrUnknownAlgorithm is the cause attached to errors for unrecognized
// algorithm names.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

func unknownAlgorithm(family, name string) error {
	return schema.NewErrorf(schema.ErrCodeUnknownAlgorithm, "unknown %s algorithm %q", family, name).
		WithCause(ErrUnknownAlgorithm)
}

func emit(sink Sink, typ string, data map[string]any) {
	if sink == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	sink(Step{Type: typ, Data: data})
}
