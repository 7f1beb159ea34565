package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
)

// BatchRepositoryFS implements repositories.BatchRepository with Firestore.
type BatchRepositoryFS struct {
	Client *firestore.Client
}

func NewBatchRepositoryFS(client *firestore.Client) *BatchRepositoryFS {
	return &BatchRepositoryFS{Client: client}
}

func (r *BatchRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(batchesCollection)
}

// Compile-time check
var _ repositories.BatchRepository = (*BatchRepositoryFS)(nil)

// Unit prices are stored as strings to keep decimal precision across the
// wire; Firestore has no decimal number type.
type batchDoc struct {
	ItemID       string     `firestore:"itemId"`
	WarehouseID  string     `firestore:"warehouseId"`
	Quantity     float64    `firestore:"quantity"`
	UnitPrice    string     `firestore:"unitPrice"`
	ExpiryDate   *time.Time `firestore:"expiryDate"`
	ReceivedDate time.Time  `firestore:"receivedDate"`
}

func (d batchDoc) toDomain(id string) (*entities.Batch, error) {
	price := decimal.Zero
	if d.UnitPrice != "" {
		var err error
		price, err = decimal.NewFromString(d.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("batch %s has invalid unit price %q: %w", id, d.UnitPrice, err)
		}
	}
	return &entities.Batch{
		ID:           id,
		ItemID:       d.ItemID,
		WarehouseID:  d.WarehouseID,
		Quantity:     d.Quantity,
		UnitPrice:    price,
		ExpiryDate:   d.ExpiryDate,
		ReceivedDate: d.ReceivedDate,
	}, nil
}

func batchToDoc(batch *entities.Batch) batchDoc {
	return batchDoc{
		ItemID:       batch.ItemID,
		WarehouseID:  batch.WarehouseID,
		Quantity:     batch.Quantity,
		UnitPrice:    batch.UnitPrice.String(),
		ExpiryDate:   batch.ExpiryDate,
		ReceivedDate: batch.ReceivedDate,
	}
}

func (r *BatchRepositoryFS) GetBatch(ctx context.Context, id string) (*entities.Batch, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", entities.ErrBatchNotFound, id)
		}
		return nil, err
	}

	var d batchDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return d.toDomain(snap.Ref.ID)
}

func (r *BatchRepositoryFS) ListBatchesByItem(ctx context.Context, itemID string) ([]*entities.Batch, error) {
	return r.list(ctx, itemID, "")
}

func (r *BatchRepositoryFS) ListBatchesByItemAndWarehouse(ctx context.Context, itemID, warehouseID string) ([]*entities.Batch, error) {
	return r.list(ctx, itemID, warehouseID)
}

func (r *BatchRepositoryFS) list(ctx context.Context, itemID, warehouseID string) ([]*entities.Batch, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	q := r.col().Where("itemId", "==", itemID)
	if warehouseID != "" {
		q = q.Where("warehouseId", "==", warehouseID)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	var lots []*entities.Batch
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d batchDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		lot, err := d.toDomain(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, nil
}

func (r *BatchRepositoryFS) SaveBatch(ctx context.Context, batch *entities.Batch) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if batch == nil || batch.ID == "" {
		return fmt.Errorf("batch must have an id")
	}

	_, err := r.col().Doc(batch.ID).Set(ctx, batchToDoc(batch))
	return err
}
