package schema

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemStatus is the visualization status tag of an item.
type ItemStatus string

const (
	ItemStatusIdle      ItemStatus = "idle"
	ItemStatusInserting ItemStatus = "inserting"
	ItemStatusSearching ItemStatus = "searching"
	ItemStatusDeleting  ItemStatus = "deleting"
	ItemStatusFound     ItemStatus = "found"
)

// Item is the opaque payload held by the simulators: an uploaded file's
// metadata. Items are immutable once created.
type Item struct {
	ID          string     `json:"id"`
	Name        string     `json:"filename"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	Status      ItemStatus `json:"status"`
	UploadedAt  time.Time  `json:"uploaded_at"`
}

// NewItem creates an idle item with a fresh identifier.
func NewItem(name, contentType string, size int64) Item {
	return Item{
		ID:          uuid.New().String(),
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Status:      ItemStatusIdle,
		UploadedAt:  time.Now().UTC(),
	}
}

// SizeFormatted returns the human readable size of the item.
func (i Item) SizeFormatted() string {
	return FormatSize(i.Size)
}

// FormatSize renders a byte count as B, KB or MB.
func FormatSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024.0)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024.0*1024.0))
	}
}
