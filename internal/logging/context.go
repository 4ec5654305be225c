package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey int

const (
	structureKey ctxKey = iota
	operationKey
	channelKey
)

// WithStructure returns a context with the structure kind set.
func WithStructure(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, structureKey, kind)
}

// WithOperation returns a context with the operation name set.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// WithChannel returns a context with the broadcast channel set.
func WithChannel(ctx context.Context, channel string) context.Context {
	return context.WithValue(ctx, channelKey, channel)
}

// Structure extracts the structure kind from the context, or "" if absent.
func Structure(ctx context.Context) string {
	v, _ := ctx.Value(structureKey).(string)
	return v
}

// Operation extracts the operation name from the context, or "" if absent.
func Operation(ctx context.Context) string {
	v, _ := ctx.Value(operationKey).(string)
	return v
}

// Channel extracts the broadcast channel from the context, or "" if absent.
func Channel(ctx context.Context) string {
	v, _ := ctx.Value(channelKey).(string)
	return v
}

// WithIDs sets all three correlation values on the context at once.
func WithIDs(ctx context.Context, structure, operation, channel string) context.Context {
	ctx = WithStructure(ctx, structure)
	ctx = WithOperation(ctx, operation)
	ctx = WithChannel(ctx, channel)
	return ctx
}

func correlationAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if v := Structure(ctx); v != "" {
		attrs = append(attrs, slog.String("structure", v))
	}
	if v := Operation(ctx); v != "" {
		attrs = append(attrs, slog.String("operation", v))
	}
	if v := Channel(ctx); v != "" {
		attrs = append(attrs, slog.String("channel", v))
	}
	return attrs
}

// LogWith returns a logger enriched with correlation values from the
// context. Only non-empty values are added.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	for _, a := range correlationAttrs(ctx) {
		logger = logger.With(a)
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler, injecting correlation values
// from the context into every record, so logger.InfoContext(ctx, ...) is
// enough to tag a line with its structure, operation and channel.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with correlation injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(correlationAttrs(ctx)...)
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the process logger: a text handler on w (stderr when nil)
// wrapped in a CorrelationHandler.
func New(w io.Writer, level string) *slog.Logger {
	return NewLeveled(w, ParseLevel(level))
}

// NewLeveled is New with a caller-owned level, typically a *slog.LevelVar
// that is changed on config reload.
func NewLeveled(w io.Writer, level slog.Leveler) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewCorrelationHandler(inner))
}

// Default returns logger, or a stderr logger at info level when nil.
func Default(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return New(nil, "info")
}
