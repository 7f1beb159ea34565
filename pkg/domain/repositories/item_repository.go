package repositories

import (
	"context"

	"github.com/aereven/stockbook/pkg/domain/entities"
)

// ItemRepository provides access to the inventory item catalog.
type ItemRepository interface {
	GetItem(ctx context.Context, id string) (*entities.InventoryItem, error)
	ListItems(ctx context.Context) ([]*entities.InventoryItem, error)
	SaveItem(ctx context.Context, item *entities.InventoryItem) error

	// UpdateItemQuantity writes a new derived aggregate quantity for an item.
	// Implementations backed by a versioned store should apply the write
	// conditionally and surface conflicts as errors.
	UpdateItemQuantity(ctx context.Context, id string, quantity float64) error
}
