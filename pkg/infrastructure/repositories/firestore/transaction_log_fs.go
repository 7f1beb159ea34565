package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
)

// Transaction documents share one collection discriminated by type.
const (
	txTypeBooking     = "booking"
	txTypeConsumption = "consumption"
)

// TransactionLogFS implements repositories.TransactionLog with Firestore.
type TransactionLogFS struct {
	Client *firestore.Client
}

func NewTransactionLogFS(client *firestore.Client) *TransactionLogFS {
	return &TransactionLogFS{Client: client}
}

func (r *TransactionLogFS) col() *firestore.CollectionRef {
	return r.Client.Collection(transactionsCollection)
}

// Compile-time check
var _ repositories.TransactionLog = (*TransactionLogFS)(nil)

type bookingDoc struct {
	Type        string    `firestore:"type"`
	ItemID      string    `firestore:"itemId"`
	BatchID     string    `firestore:"batchId"`
	Quantity    float64   `firestore:"quantity"`
	ReferenceID string    `firestore:"referenceId"`
	TaskNumber  string    `firestore:"taskNumber"`
	Fulfilled   bool      `firestore:"fulfilled"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UserID      string    `firestore:"userId"`
}

func (d bookingDoc) toDomain(id string) *entities.Reservation {
	return &entities.Reservation{
		ID:          id,
		ItemID:      d.ItemID,
		BatchID:     d.BatchID,
		Quantity:    d.Quantity,
		ReferenceID: d.ReferenceID,
		TaskNumber:  d.TaskNumber,
		Fulfilled:   d.Fulfilled,
		CreatedAt:   d.CreatedAt,
		UserID:      d.UserID,
	}
}

func bookingToDoc(b *entities.Reservation) bookingDoc {
	return bookingDoc{
		Type:        txTypeBooking,
		ItemID:      b.ItemID,
		BatchID:     b.BatchID,
		Quantity:    b.Quantity,
		ReferenceID: b.ReferenceID,
		TaskNumber:  b.TaskNumber,
		Fulfilled:   b.Fulfilled,
		CreatedAt:   b.CreatedAt,
		UserID:      b.UserID,
	}
}

type consumptionDoc struct {
	Type           string    `firestore:"type"`
	MaterialID     string    `firestore:"materialId"`
	BatchID        string    `firestore:"batchId"`
	Quantity       float64   `firestore:"quantity"`
	UnitPrice      string    `firestore:"unitPrice"`
	Timestamp      time.Time `firestore:"timestamp"`
	IncludeInCosts bool      `firestore:"includeInCosts"`
}

func (d consumptionDoc) toDomain(id string) (*entities.ConsumedMaterial, error) {
	price := decimal.Zero
	if d.UnitPrice != "" {
		var err error
		price, err = decimal.NewFromString(d.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("consumption %s has invalid unit price %q: %w", id, d.UnitPrice, err)
		}
	}
	return &entities.ConsumedMaterial{
		MaterialID:     d.MaterialID,
		BatchID:        d.BatchID,
		Quantity:       d.Quantity,
		UnitPrice:      price,
		Timestamp:      d.Timestamp,
		IncludeInCosts: d.IncludeInCosts,
	}, nil
}

func (r *TransactionLogFS) AppendBooking(ctx context.Context, booking *entities.Reservation) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if booking == nil || booking.ID == "" {
		return fmt.Errorf("booking must have an id")
	}

	_, err := r.col().Doc(booking.ID).Create(ctx, bookingToDoc(booking))
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("booking %s already exists", booking.ID)
	}
	return err
}

func (r *TransactionLogFS) UpdateBooking(ctx context.Context, booking *entities.Reservation) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if booking == nil || booking.ID == "" {
		return fmt.Errorf("booking must have an id")
	}

	_, err := r.col().Doc(booking.ID).Set(ctx, bookingToDoc(booking))
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s", entities.ErrReservationNotFound, booking.ID)
	}
	return err
}

func (r *TransactionLogFS) DeleteBooking(ctx context.Context, id string) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}

	ref := r.col().Doc(id)
	// Delete succeeds on missing documents, so verify existence first to keep
	// cleanup counters honest.
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", entities.ErrReservationNotFound, id)
		}
		return err
	}
	_, err := ref.Delete(ctx)
	return err
}

func (r *TransactionLogFS) ListBookings(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Reservation, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	q := r.col().Where("type", "==", txTypeBooking)
	if filter.ItemID != "" {
		q = q.Where("itemId", "==", filter.ItemID)
	}
	if filter.BatchID != "" {
		q = q.Where("batchId", "==", filter.BatchID)
	}
	if filter.ReferenceID != "" {
		q = q.Where("referenceId", "==", filter.ReferenceID)
	}
	if !filter.From.IsZero() {
		q = q.Where("createdAt", ">=", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("createdAt", "<=", filter.To)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	var bookings []*entities.Reservation
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d bookingDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		bookings = append(bookings, d.toDomain(snap.Ref.ID))
	}
	return bookings, nil
}

func (r *TransactionLogFS) AppendConsumption(ctx context.Context, record *entities.ConsumedMaterial) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if record == nil {
		return fmt.Errorf("consumption record cannot be nil")
	}

	doc := consumptionDoc{
		Type:           txTypeConsumption,
		MaterialID:     record.MaterialID,
		BatchID:        record.BatchID,
		Quantity:       record.Quantity,
		UnitPrice:      record.UnitPrice.String(),
		Timestamp:      record.Timestamp,
		IncludeInCosts: record.IncludeInCosts,
	}
	_, err := r.col().Doc(uuid.NewString()).Create(ctx, doc)
	return err
}

func (r *TransactionLogFS) ListConsumption(ctx context.Context, filter repositories.ConsumptionFilter) ([]*entities.ConsumedMaterial, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	q := r.col().Where("type", "==", txTypeConsumption)
	if filter.MaterialID != "" {
		q = q.Where("materialId", "==", filter.MaterialID)
	}
	if filter.BatchID != "" {
		q = q.Where("batchId", "==", filter.BatchID)
	}
	if !filter.From.IsZero() {
		q = q.Where("timestamp", ">=", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("timestamp", "<=", filter.To)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	var records []*entities.ConsumedMaterial
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d consumptionDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		rec, err := d.toDomain(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
