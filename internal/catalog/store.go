// Package catalog records metadata of the items that pass through the
// structures. Payload bytes are never stored.
package catalog

import (
	"context"
	"time"

	"github.com/rendis/dsviz/pkg/schema"
)

// ItemFilter narrows List. Empty fields match everything. Expression is a
// CEL predicate over item, e.g. `item.size > 1024 && item.content_type == "image/png"`.
type ItemFilter struct {
	ContentType string            `json:"content_type,omitempty"`
	Status      schema.ItemStatus `json:"status,omitempty"`
	Since       time.Time         `json:"since,omitempty"`
	Expression  string            `json:"expression,omitempty"`
	Limit       int               `json:"limit,omitempty"`
	Offset      int               `json:"offset,omitempty"`
}

// Stats summarises the catalog.
type Stats struct {
	Items      int            `json:"items"`
	TotalBytes int64          `json:"total_bytes"`
	ByType     map[string]int `json:"by_type"`
	ByStatus   map[string]int `json:"by_status"`
}

// Store persists item metadata.
type Store interface {
	Put(ctx context.Context, item schema.Item) error
	Get(ctx context.Context, id string) (schema.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]schema.Item, error)
	UpdateStatus(ctx context.Context, id string, status schema.ItemStatus) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

func storeNotFound(id string) *schema.VizError {
	return schema.NewErrorf(schema.ErrCodeNotFound, "item %q not found", id)
}

func storeError(op string, err error) *schema.VizError {
	return schema.NewErrorf(schema.ErrCodeStore, "catalog %s failed", op).WithCause(err)
}
