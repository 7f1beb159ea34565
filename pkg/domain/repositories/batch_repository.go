package repositories

import (
	"context"

	"github.com/aereven/stockbook/pkg/domain/entities"
)

// BatchRepository provides access to physical lots. Batch creation and
// destruction happen outside this core; it only reads lots and never writes
// anything but is given Save for completeness of the store contract.
type BatchRepository interface {
	GetBatch(ctx context.Context, id string) (*entities.Batch, error)
	ListBatchesByItem(ctx context.Context, itemID string) ([]*entities.Batch, error)
	ListBatchesByItemAndWarehouse(ctx context.Context, itemID, warehouseID string) ([]*entities.Batch, error)
	SaveBatch(ctx context.Context, batch *entities.Batch) error
}
