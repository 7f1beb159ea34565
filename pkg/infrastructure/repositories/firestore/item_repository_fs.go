package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
)

// ItemRepositoryFS implements repositories.ItemRepository with Firestore.
type ItemRepositoryFS struct {
	Client *firestore.Client
}

func NewItemRepositoryFS(client *firestore.Client) *ItemRepositoryFS {
	return &ItemRepositoryFS{Client: client}
}

func (r *ItemRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(itemsCollection)
}

// Compile-time check
var _ repositories.ItemRepository = (*ItemRepositoryFS)(nil)

type itemDoc struct {
	Name           string  `firestore:"name"`
	Unit           string  `firestore:"unit"`
	Quantity       float64 `firestore:"quantity"`
	BookedQuantity float64 `firestore:"bookedQuantity"`
	MinStockLevel  float64 `firestore:"minStockLevel"`
	MaxStockLevel  float64 `firestore:"maxStockLevel"`
	Archived       bool    `firestore:"archived"`
}

func (d itemDoc) toDomain(id string) *entities.InventoryItem {
	return &entities.InventoryItem{
		ID:             id,
		Name:           d.Name,
		Unit:           d.Unit,
		Quantity:       d.Quantity,
		BookedQuantity: d.BookedQuantity,
		MinStockLevel:  d.MinStockLevel,
		MaxStockLevel:  d.MaxStockLevel,
		Archived:       d.Archived,
	}
}

func itemToDoc(item *entities.InventoryItem) itemDoc {
	return itemDoc{
		Name:           item.Name,
		Unit:           item.Unit,
		Quantity:       item.Quantity,
		BookedQuantity: item.BookedQuantity,
		MinStockLevel:  item.MinStockLevel,
		MaxStockLevel:  item.MaxStockLevel,
		Archived:       item.Archived,
	}
}

func (r *ItemRepositoryFS) GetItem(ctx context.Context, id string) (*entities.InventoryItem, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", entities.ErrItemNotFound, id)
		}
		return nil, err
	}

	var d itemDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return d.toDomain(snap.Ref.ID), nil
}

func (r *ItemRepositoryFS) ListItems(ctx context.Context) ([]*entities.InventoryItem, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	it := r.col().Documents(ctx)
	defer it.Stop()

	var items []*entities.InventoryItem
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d itemDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		items = append(items, d.toDomain(snap.Ref.ID))
	}
	return items, nil
}

func (r *ItemRepositoryFS) SaveItem(ctx context.Context, item *entities.InventoryItem) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if item == nil || item.ID == "" {
		return fmt.Errorf("item must have an id")
	}

	_, err := r.col().Doc(item.ID).Set(ctx, itemToDoc(item))
	return err
}

// UpdateItemQuantity writes the quantity inside a transaction, so a
// concurrent quantity write on the same document is retried instead of lost.
func (r *ItemRepositoryFS) UpdateItemQuantity(ctx context.Context, id string, quantity float64) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}

	ref := r.col().Doc(id)
	return r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: %s", entities.ErrItemNotFound, id)
			}
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "quantity", Value: quantity},
		})
	})
}
