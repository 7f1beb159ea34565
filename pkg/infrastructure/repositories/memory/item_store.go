package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
)

// ItemStore provides in-memory inventory item storage. It backs tests and
// the runnable example; production deployments use the Firestore adapter.
type ItemStore struct {
	mu    sync.RWMutex
	items map[string]entities.InventoryItem
}

// NewItemStore creates an empty in-memory item store.
func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[string]entities.InventoryItem)}
}

// Verify interface compliance
var _ repositories.ItemRepository = (*ItemStore)(nil)

// GetItem returns the item with the given id.
func (s *ItemStore) GetItem(ctx context.Context, id string) (*entities.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrItemNotFound, id)
	}
	return &item, nil
}

// ListItems returns all items ordered by id.
func (s *ItemStore) ListItems(ctx context.Context) ([]*entities.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*entities.InventoryItem, 0, len(s.items))
	for id := range s.items {
		item := s.items[id]
		items = append(items, &item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// SaveItem inserts or replaces an item.
func (s *ItemStore) SaveItem(ctx context.Context, item *entities.InventoryItem) error {
	if item == nil || item.ID == "" {
		return fmt.Errorf("item must have an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = *item
	return nil
}

// UpdateItemQuantity writes a new aggregate quantity for the item.
func (s *ItemStore) UpdateItemQuantity(ctx context.Context, id string, quantity float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", entities.ErrItemNotFound, id)
	}
	item.Quantity = quantity
	s.items[id] = item
	return nil
}
