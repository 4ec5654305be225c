package main

import (
	"context"
	"strconv"

	"github.com/rendis/dsviz/pkg/schema"
)

// localApp builds an app for one-shot commands: no pacing delay, no
// catalog, warnings only.
func localApp(ctx context.Context, capacity int) (*app, error) {
	logger, _ := newLogger(nil, "warn")
	return buildApp(ctx, Config{
		LogLevel:      "warn",
		PoolSize:      2,
		ArrayCapacity: capacity,
		StackCapacity: capacity,
		QueueCapacity: capacity,
		PacingMode:    pacingFixed,
		Catalog:       catalogNone,
	}, logger)
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeValidation, "%q is not an integer", a)
		}
		out[i] = n
	}
	return out, nil
}
