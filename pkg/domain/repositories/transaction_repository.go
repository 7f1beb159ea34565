package repositories

import (
	"context"
	"time"

	"github.com/aereven/stockbook/pkg/domain/entities"
)

// BookingFilter narrows booking queries. Zero-valued fields are ignored.
type BookingFilter struct {
	ItemID      string
	BatchID     string
	ReferenceID string
	From        time.Time
	To          time.Time
}

// ConsumptionFilter narrows consumption queries. Zero-valued fields are ignored.
type ConsumptionFilter struct {
	MaterialID string
	BatchID    string
	From       time.Time
	To         time.Time
}

// TransactionLog is the booking and consumption event store. Consumption
// records are append-only; bookings are mutable while their owning task is
// open and are removed by the cleanup jobs once orphaned.
type TransactionLog interface {
	AppendBooking(ctx context.Context, booking *entities.Reservation) error
	UpdateBooking(ctx context.Context, booking *entities.Reservation) error
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]*entities.Reservation, error)

	AppendConsumption(ctx context.Context, record *entities.ConsumedMaterial) error
	ListConsumption(ctx context.Context, filter ConsumptionFilter) ([]*entities.ConsumedMaterial, error)
}
