package catalog

import (
	"context"

	"github.com/rendis/dsviz/internal/expressions"
	"github.com/rendis/dsviz/pkg/schema"
)

// itemVars is the CEL view of an item.
func itemVars(item schema.Item) map[string]any {
	return map[string]any{
		"id":           item.ID,
		"filename":     item.Name,
		"content_type": item.ContentType,
		"size":         item.Size,
		"status":       string(item.Status),
		"uploaded_at":  item.UploadedAt,
	}
}

// applyFilter keeps the items matching the CEL expression, then applies
// offset and limit. Items must already match the column filters.
func applyFilter(ctx context.Context, cel *expressions.CELEngine, items []schema.Item, f ItemFilter) ([]schema.Item, error) {
	out := items
	if f.Expression != "" {
		if cel == nil {
			return nil, schema.NewError(schema.ErrCodeExpression, "expression filters are not enabled")
		}
		out = make([]schema.Item, 0, len(items))
		for _, it := range items {
			ok, err := cel.Match(ctx, f.Expression, itemVars(it))
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, it)
			}
		}
	}

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []schema.Item{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func matchColumns(item schema.Item, f ItemFilter) bool {
	if f.ContentType != "" && item.ContentType != f.ContentType {
		return false
	}
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if !f.Since.IsZero() && item.UploadedAt.Before(f.Since) {
		return false
	}
	return true
}
