package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Batch represents a physical lot of an inventory item: a dated, priced
// sub-quantity received into one warehouse. Batches are decremented by
// consumption on the store side; this core never creates or destroys them.
type Batch struct {
	ID           string
	ItemID       string
	WarehouseID  string
	Quantity     float64
	UnitPrice    decimal.Decimal
	ExpiryDate   *time.Time // nil means undated stock
	ReceivedDate time.Time
}

// NewBatch creates a validated Batch.
func NewBatch(id, itemID, warehouseID string, quantity float64, unitPrice decimal.Decimal, expiryDate *time.Time, receivedDate time.Time) (*Batch, error) {
	if id == "" {
		return nil, fmt.Errorf("batch id cannot be empty")
	}
	if itemID == "" {
		return nil, fmt.Errorf("batch item id cannot be empty")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("batch quantity cannot be negative, got %v", quantity)
	}

	return &Batch{
		ID:           id,
		ItemID:       itemID,
		WarehouseID:  warehouseID,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		ExpiryDate:   expiryDate,
		ReceivedDate: receivedDate,
	}, nil
}

// IsExpired reports whether the batch's expiry date has passed at the given
// reference time. Undated batches never expire.
func (b *Batch) IsExpired(now time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(now)
}

// ExpiresBefore orders two batches by expiry for FEFO selection: a dated
// batch sorts before an undated one, and two dated batches sort by date.
func (b *Batch) ExpiresBefore(other *Batch) bool {
	if b.ExpiryDate == nil {
		return false
	}
	if other.ExpiryDate == nil {
		return true
	}
	return b.ExpiryDate.Before(*other.ExpiryDate)
}

// TotalValue returns quantity times unit price.
func (b *Batch) TotalValue() decimal.Decimal {
	return b.UnitPrice.Mul(decimal.NewFromFloat(b.Quantity))
}
