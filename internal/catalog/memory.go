package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/rendis/dsviz/internal/expressions"
	"github.com/rendis/dsviz/pkg/schema"
)

// MemoryStore keeps items in a map. Used when no database path is set and
// in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]schema.Item
	cel   *expressions.CELEngine
}

// NewMemoryStore creates an empty store. cel may be nil, which disables
// expression filters.
func NewMemoryStore(cel *expressions.CELEngine) *MemoryStore {
	return &MemoryStore{items: make(map[string]schema.Item), cel: cel}
}

func (s *MemoryStore) Put(_ context.Context, item schema.Item) error {
	if item.ID == "" {
		return schema.NewError(schema.ErrCodeValidation, "item id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (schema.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return schema.Item{}, storeNotFound(id)
	}
	return item, nil
}

// List returns matching items oldest first.
func (s *MemoryStore) List(ctx context.Context, f ItemFilter) ([]schema.Item, error) {
	s.mu.RLock()
	items := make([]schema.Item, 0, len(s.items))
	for _, it := range s.items {
		if matchColumns(it, f) {
			items = append(items, it)
		}
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].UploadedAt.Equal(items[j].UploadedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].UploadedAt.Before(items[j].UploadedAt)
	})
	return applyFilter(ctx, s.cel, items, f)
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, status schema.ItemStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return storeNotFound(id)
	}
	item.Status = status
	s.items[id] = item
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return storeNotFound(id)
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{ByType: map[string]int{}, ByStatus: map[string]int{}}
	for _, it := range s.items {
		st.Items++
		st.TotalBytes += it.Size
		st.ByType[it.ContentType]++
		st.ByStatus[string(it.Status)]++
	}
	return st, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
