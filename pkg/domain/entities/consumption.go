package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ConsumedMaterial records one usage event of a material against a batch.
// Records are append-only and never mutated after creation; cost reporting
// and the requirement resolver both read them as an immutable ledger.
type ConsumedMaterial struct {
	MaterialID     string
	BatchID        string
	Quantity       float64
	UnitPrice      decimal.Decimal
	Timestamp      time.Time
	IncludeInCosts bool
}

// NewConsumedMaterial creates a validated ConsumedMaterial record.
func NewConsumedMaterial(materialID, batchID string, quantity float64, unitPrice decimal.Decimal, ts time.Time) (*ConsumedMaterial, error) {
	if materialID == "" {
		return nil, fmt.Errorf("consumed material id cannot be empty")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("consumed quantity cannot be negative, got %v", quantity)
	}

	return &ConsumedMaterial{
		MaterialID:     materialID,
		BatchID:        batchID,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		Timestamp:      ts,
		IncludeInCosts: true,
	}, nil
}

// Cost returns quantity times unit price, zero when the record is excluded
// from cost reporting.
func (c *ConsumedMaterial) Cost() decimal.Decimal {
	if !c.IncludeInCosts {
		return decimal.Zero
	}
	return c.UnitPrice.Mul(decimal.NewFromFloat(c.Quantity))
}
