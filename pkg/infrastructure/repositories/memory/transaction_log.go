package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
)

// TransactionLog is the in-memory booking and consumption event store.
// Consumption is an append-only stream; bookings form a mutable set keyed by
// id, matching the semantics the persistent store exposes.
type TransactionLog struct {
	mu          sync.RWMutex
	bookings    map[string]entities.Reservation
	consumption []entities.ConsumedMaterial
}

// NewTransactionLog creates an empty in-memory transaction log.
func NewTransactionLog() *TransactionLog {
	return &TransactionLog{bookings: make(map[string]entities.Reservation)}
}

// Verify interface compliance
var _ repositories.TransactionLog = (*TransactionLog)(nil)

// AppendBooking stores a new booking.
func (l *TransactionLog) AppendBooking(ctx context.Context, booking *entities.Reservation) error {
	if booking == nil || booking.ID == "" {
		return fmt.Errorf("booking must have an id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.bookings[booking.ID]; exists {
		return fmt.Errorf("booking %s already exists", booking.ID)
	}
	l.bookings[booking.ID] = *booking
	return nil
}

// UpdateBooking replaces an existing booking.
func (l *TransactionLog) UpdateBooking(ctx context.Context, booking *entities.Reservation) error {
	if booking == nil || booking.ID == "" {
		return fmt.Errorf("booking must have an id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.bookings[booking.ID]; !exists {
		return fmt.Errorf("%w: %s", entities.ErrReservationNotFound, booking.ID)
	}
	l.bookings[booking.ID] = *booking
	return nil
}

// DeleteBooking removes a booking by id. Deleting an absent id is an error so
// cleanup counters stay honest.
func (l *TransactionLog) DeleteBooking(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.bookings[id]; !exists {
		return fmt.Errorf("%w: %s", entities.ErrReservationNotFound, id)
	}
	delete(l.bookings, id)
	return nil
}

// ListBookings returns bookings matching the filter, ordered by creation time.
func (l *TransactionLog) ListBookings(ctx context.Context, filter repositories.BookingFilter) ([]*entities.Reservation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var matched []*entities.Reservation
	for id := range l.bookings {
		b := l.bookings[id]
		if filter.ItemID != "" && b.ItemID != filter.ItemID {
			continue
		}
		if filter.BatchID != "" && b.BatchID != filter.BatchID {
			continue
		}
		if filter.ReferenceID != "" && b.ReferenceID != filter.ReferenceID {
			continue
		}
		if !filter.From.IsZero() && b.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && b.CreatedAt.After(filter.To) {
			continue
		}
		matched = append(matched, &b)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

// AppendConsumption appends one immutable consumption record.
func (l *TransactionLog) AppendConsumption(ctx context.Context, record *entities.ConsumedMaterial) error {
	if record == nil {
		return fmt.Errorf("consumption record cannot be nil")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.consumption = append(l.consumption, *record)
	return nil
}

// ListConsumption returns consumption records matching the filter in append
// order.
func (l *TransactionLog) ListConsumption(ctx context.Context, filter repositories.ConsumptionFilter) ([]*entities.ConsumedMaterial, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var matched []*entities.ConsumedMaterial
	for i := range l.consumption {
		c := l.consumption[i]
		if filter.MaterialID != "" && c.MaterialID != filter.MaterialID {
			continue
		}
		if filter.BatchID != "" && c.BatchID != filter.BatchID {
			continue
		}
		if !filter.From.IsZero() && c.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && c.Timestamp.After(filter.To) {
			continue
		}
		matched = append(matched, &c)
	}
	return matched, nil
}
