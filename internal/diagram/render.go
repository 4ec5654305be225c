package diagram

import (
	"context"
	"strings"

	"github.com/rendis/dsviz/pkg/schema"
)

// Output is a rendered diagram and its MIME type.
type Output struct {
	ContentType string
	Body        []byte
}

// Render dispatches on format: ascii, mermaid, png or svg.
func Render(ctx context.Context, model *DiagramModel, format string) (Output, error) {
	switch strings.ToLower(format) {
	case "", "ascii", "text":
		return Output{ContentType: "text/plain; charset=utf-8", Body: []byte(RenderASCII(model))}, nil
	case "mermaid":
		return Output{ContentType: "text/vnd.mermaid; charset=utf-8", Body: []byte(RenderMermaid(model))}, nil
	case "png", "image":
		img, err := RenderImage(ctx, model, FormatPNG)
		if err != nil {
			return Output{}, err
		}
		return Output{ContentType: "image/png", Body: img}, nil
	case "svg":
		img, err := RenderImage(ctx, model, FormatSVG)
		if err != nil {
			return Output{}, err
		}
		return Output{ContentType: "image/svg+xml", Body: img}, nil
	default:
		return Output{}, schema.NewErrorf(schema.ErrCodeValidation,
			"unknown format %q, want ascii, mermaid, png or svg", format)
	}
}
