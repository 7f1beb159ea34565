package entities

import (
	"fmt"
	"time"
)

// Reservation is a hold placed against stock on behalf of a production task.
// BatchID may be empty, which means "auto-allocate": the hold is against the
// item as a whole and a concrete lot is picked later. Many reservations may
// reference the same batch; the sum of their quantities is intended to stay
// within the batch's quantity, enforced by serializing mutation per item.
type Reservation struct {
	ID          string
	ItemID      string
	BatchID     string
	Quantity    float64
	ReferenceID string // owning task id
	TaskNumber  string
	Fulfilled   bool
	CreatedAt   time.Time
	UserID      string
}

// NewReservation creates a validated Reservation.
func NewReservation(id, itemID, batchID string, quantity float64, referenceID string, createdAt time.Time) (*Reservation, error) {
	if id == "" {
		return nil, fmt.Errorf("reservation id cannot be empty")
	}
	if itemID == "" {
		return nil, fmt.Errorf("reservation item id cannot be empty")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("reservation quantity cannot be negative, got %v", quantity)
	}
	if referenceID == "" {
		return nil, fmt.Errorf("reservation reference id cannot be empty")
	}

	return &Reservation{
		ID:          id,
		ItemID:      itemID,
		BatchID:     batchID,
		Quantity:    quantity,
		ReferenceID: referenceID,
		CreatedAt:   createdAt,
	}, nil
}

// AutoAllocated reports whether the hold still lacks a concrete lot.
func (r *Reservation) AutoAllocated() bool {
	return r.BatchID == ""
}
