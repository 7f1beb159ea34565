package maintenance

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aereven/stockbook/pkg/domain/repositories"
	"github.com/aereven/stockbook/pkg/infrastructure/locking"
)

// RecalcResult is the outcome of re-deriving one item's aggregate quantity
// from its batch ledger.
type RecalcResult struct {
	ItemID      string
	OldQuantity float64
	NewQuantity float64
	Difference  float64
}

// RecalcFailure records an item whose recalculation failed. One failed item
// never aborts the rest of a bulk pass.
type RecalcFailure struct {
	ItemID string
	Err    error
}

// RecalcReport collects the results of a bulk recalculation, including the
// partial set gathered before a cancellation.
type RecalcReport struct {
	Results  []RecalcResult
	Failures []RecalcFailure
}

// Recalculator repairs drift between an item's stored aggregate quantity and
// the true sum of its batches. It is a maintenance pass, not a request-path
// operation: a full catalog run is expected to take seconds to minutes.
type Recalculator struct {
	items   repositories.ItemRepository
	batches repositories.BatchRepository
	locks   *locking.KeyedMutex
	logger  *zap.Logger
	workers int
}

// NewRecalculator creates a recalculator. logger may be nil.
func NewRecalculator(items repositories.ItemRepository, batches repositories.BatchRepository, logger *zap.Logger) *Recalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recalculator{
		items:   items,
		batches: batches,
		locks:   locking.NewKeyedMutex(),
		logger:  logger,
		workers: 4,
	}
}

// RecalculateItemQuantity sums the item's batch quantities and writes the sum
// back as the item's aggregate quantity. Idempotent: a second run with no
// intervening batch mutation reports a zero difference. Concurrent runs for
// the same item are rejected via a per-item in-flight guard.
func (r *Recalculator) RecalculateItemQuantity(ctx context.Context, itemID string) (*RecalcResult, error) {
	if !r.locks.TryLock(itemID) {
		return nil, fmt.Errorf("recalculation already in progress for item %s", itemID)
	}
	defer r.locks.Unlock(itemID)

	item, err := r.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load item %s: %w", itemID, err)
	}

	lots, err := r.batches.ListBatchesByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load batches for %s: %w", itemID, err)
	}

	var sum float64
	for _, lot := range lots {
		sum += lot.Quantity
	}

	result := &RecalcResult{
		ItemID:      itemID,
		OldQuantity: item.Quantity,
		NewQuantity: sum,
		Difference:  sum - item.Quantity,
	}

	if result.Difference != 0 {
		if err := r.items.UpdateItemQuantity(ctx, itemID, sum); err != nil {
			return nil, fmt.Errorf("write quantity for %s: %w", itemID, err)
		}
		r.logger.Info("repaired quantity drift",
			zap.String("item_id", itemID),
			zap.Float64("old", result.OldQuantity),
			zap.Float64("new", result.NewQuantity),
			zap.Float64("difference", result.Difference))
	}

	return result, nil
}

// RecalculateAll recalculates every item in the catalog. Failures are
// isolated per item and collected instead of aborting the pass. Distinct
// items recalculate in parallel under a bounded worker count. When ctx is
// cancelled the pass stops dispatching, returns the partial report collected
// so far, and reports the context error.
func (r *Recalculator) RecalculateAll(ctx context.Context) (*RecalcReport, error) {
	items, err := r.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	report := &RecalcReport{}
	var reportMu sync.Mutex

	ids := make(chan string)
	var wg sync.WaitGroup

	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				result, err := r.RecalculateItemQuantity(ctx, id)
				reportMu.Lock()
				if err != nil {
					report.Failures = append(report.Failures, RecalcFailure{ItemID: id, Err: err})
				} else {
					report.Results = append(report.Results, *result)
				}
				reportMu.Unlock()
			}
		}()
	}

	var cancelled error
dispatch:
	for _, item := range items {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break dispatch
		case ids <- item.ID:
		}
	}
	close(ids)
	wg.Wait()

	r.logger.Info("recalculation pass finished",
		zap.Int("items", len(items)),
		zap.Int("results", len(report.Results)),
		zap.Int("failures", len(report.Failures)),
		zap.Bool("cancelled", cancelled != nil))

	return report, cancelled
}
