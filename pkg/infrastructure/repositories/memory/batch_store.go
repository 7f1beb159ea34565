package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
)

// BatchStore provides in-memory lot storage.
type BatchStore struct {
	mu      sync.RWMutex
	batches map[string]entities.Batch
}

// NewBatchStore creates an empty in-memory batch store.
func NewBatchStore() *BatchStore {
	return &BatchStore{batches: make(map[string]entities.Batch)}
}

// Verify interface compliance
var _ repositories.BatchRepository = (*BatchStore)(nil)

// GetBatch returns the batch with the given id.
func (s *BatchStore) GetBatch(ctx context.Context, id string) (*entities.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, ok := s.batches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrBatchNotFound, id)
	}
	return &batch, nil
}

// ListBatchesByItem returns the item's batches ordered by received date, so
// callers see lots in the order stock arrived.
func (s *BatchStore) ListBatchesByItem(ctx context.Context, itemID string) ([]*entities.Batch, error) {
	return s.list(itemID, "")
}

// ListBatchesByItemAndWarehouse narrows ListBatchesByItem to one warehouse.
func (s *BatchStore) ListBatchesByItemAndWarehouse(ctx context.Context, itemID, warehouseID string) ([]*entities.Batch, error) {
	return s.list(itemID, warehouseID)
}

func (s *BatchStore) list(itemID, warehouseID string) ([]*entities.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lots []*entities.Batch
	for id := range s.batches {
		batch := s.batches[id]
		if batch.ItemID != itemID {
			continue
		}
		if warehouseID != "" && batch.WarehouseID != warehouseID {
			continue
		}
		lots = append(lots, &batch)
	}
	sort.Slice(lots, func(i, j int) bool {
		if !lots[i].ReceivedDate.Equal(lots[j].ReceivedDate) {
			return lots[i].ReceivedDate.Before(lots[j].ReceivedDate)
		}
		return lots[i].ID < lots[j].ID
	})
	return lots, nil
}

// SaveBatch inserts or replaces a batch.
func (s *BatchStore) SaveBatch(ctx context.Context, batch *entities.Batch) error {
	if batch == nil || batch.ID == "" {
		return fmt.Errorf("batch must have an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batch.ID] = *batch
	return nil
}
