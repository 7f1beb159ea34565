package consumption

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
)

// issuedTolerance is the multiplicative slack applied before flagging
// over-consumption: 0.1% absorbs scale and unit-conversion rounding.
const issuedTolerance = 1.001

// IsExceedingIssued reports whether a consumed amount exceeds the issued
// amount beyond rounding tolerance. Advisory only; it never blocks a record.
func IsExceedingIssued(consumed, issued float64) bool {
	return consumed > issued*issuedTolerance
}

// ExcessPercent returns by how many percent consumption exceeds the issued
// amount, or 0 when within tolerance.
func ExcessPercent(consumed, issued float64) float64 {
	if !IsExceedingIssued(consumed, issued) || issued <= 0 {
		return 0
	}
	return (consumed - issued) / issued * 100
}

// Warning is the advisory over-consumption signal surfaced alongside a
// successfully written consumption record.
type Warning struct {
	Exceeding     bool
	ExcessPercent float64
}

// RecordInput describes one consumption event to append.
type RecordInput struct {
	MaterialID string
	BatchID    string
	Quantity   float64
	UnitPrice  decimal.Decimal
	// IssuedQuantity is what was handed out for the operation; zero means
	// unknown and disables the over-consumption check.
	IssuedQuantity float64
	IncludeInCosts bool
}

// Reconciler appends consumption records to the transaction log. It never
// touches reservation records directly: downstream required-quantity
// computation is what makes the remaining-to-reserve shrink.
type Reconciler struct {
	log repositories.TransactionLog
	now func() time.Time
}

// NewReconciler creates a reconciler over the given transaction log.
func NewReconciler(log repositories.TransactionLog) *Reconciler {
	return &Reconciler{log: log, now: time.Now}
}

// Record validates and appends one immutable consumption record. The returned
// warning is advisory; a recording that over-consumes is still written.
func (r *Reconciler) Record(ctx context.Context, input RecordInput) (Warning, error) {
	if math.IsNaN(input.Quantity) || math.IsInf(input.Quantity, 0) {
		return Warning{}, fmt.Errorf("consumed quantity is not a number")
	}
	if input.Quantity < 0 {
		return Warning{}, fmt.Errorf("consumed quantity cannot be negative, got %v", input.Quantity)
	}

	record, err := entities.NewConsumedMaterial(input.MaterialID, input.BatchID, input.Quantity, input.UnitPrice, r.now())
	if err != nil {
		return Warning{}, err
	}
	record.IncludeInCosts = input.IncludeInCosts

	if err := r.log.AppendConsumption(ctx, record); err != nil {
		return Warning{}, fmt.Errorf("append consumption for %s: %w", input.MaterialID, err)
	}

	var warning Warning
	if input.IssuedQuantity > 0 {
		warning.Exceeding = IsExceedingIssued(input.Quantity, input.IssuedQuantity)
		warning.ExcessPercent = ExcessPercent(input.Quantity, input.IssuedQuantity)
	}
	return warning, nil
}

// ConsumedTotal sums the recorded consumption of one material, optionally
// bounded by a time range.
func (r *Reconciler) ConsumedTotal(ctx context.Context, materialID string, from, to time.Time) (float64, error) {
	records, err := r.log.ListConsumption(ctx, repositories.ConsumptionFilter{
		MaterialID: materialID,
		From:       from,
		To:         to,
	})
	if err != nil {
		return 0, fmt.Errorf("list consumption for %s: %w", materialID, err)
	}

	var total float64
	for _, rec := range records {
		total += rec.Quantity
	}
	return total, nil
}

// CostTotal sums the cost of recorded consumption of one material, skipping
// records excluded from cost reporting.
func (r *Reconciler) CostTotal(ctx context.Context, materialID string, from, to time.Time) (decimal.Decimal, error) {
	records, err := r.log.ListConsumption(ctx, repositories.ConsumptionFilter{
		MaterialID: materialID,
		From:       from,
		To:         to,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("list consumption for %s: %w", materialID, err)
	}

	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Cost())
	}
	return total, nil
}
