package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aereven/stockbook/pkg/application/services/allocation"
	"github.com/aereven/stockbook/pkg/application/services/consumption"
	"github.com/aereven/stockbook/pkg/application/services/maintenance"
	"github.com/aereven/stockbook/pkg/application/services/status"
	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/infrastructure/cache"
	"github.com/aereven/stockbook/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	// Create in-memory stores
	items := memory.NewItemStore()
	batches := memory.NewBatchStore()
	txlog := memory.NewTransactionLog()
	tasks := memory.NewTaskStore()

	setupBakery(ctx, items, batches, tasks)

	svc := allocation.NewService(tasks, batches, txlog)
	results := cache.NewTTLCache[string, status.Result](cache.Config{MaxEntries: 128, TTL: 30 * time.Second})
	evaluator := status.NewEvaluator(tasks, txlog, results)

	fmt.Println("Reserving flour for bread production task...")
	result, err := svc.ReserveAuto(ctx, "TASK-BREAD", "FLOUR")
	if err != nil {
		fmt.Printf("reservation failed: %v\n", err)
		return
	}
	fmt.Printf("  allocated %.1f kg across %d lots (remaining demand %.1f)\n",
		result.AllocatedQty, len(result.Allocations), result.RemainingDemand)
	for _, a := range result.Allocations {
		fmt.Printf("    %-10s %.1f kg\n", a.BatchID, a.Quantity)
	}

	st, err := evaluator.TaskStatus(ctx, "TASK-BREAD")
	if err != nil {
		fmt.Printf("status failed: %v\n", err)
		return
	}
	fmt.Printf("Task status: %s (coverage %.0f%%)\n", st.State.Label(), st.Ratio*100)

	// Record some usage on the shop floor.
	reconciler := consumption.NewReconciler(txlog)
	warning, err := reconciler.Record(ctx, consumption.RecordInput{
		MaterialID:     "FLOUR",
		BatchID:        result.Allocations[0].BatchID,
		Quantity:       26,
		UnitPrice:      decimal.New(85, -2),
		IssuedQuantity: 25,
		IncludeInCosts: true,
	})
	if err != nil {
		fmt.Printf("recording consumption failed: %v\n", err)
		return
	}
	if warning.Exceeding {
		fmt.Printf("Warning: consumption exceeds issued amount by %.1f%%\n", warning.ExcessPercent)
	}

	// Maintenance pass: repair drift and clean residue.
	recalculator := maintenance.NewRecalculator(items, batches, nil)
	report, err := recalculator.RecalculateAll(ctx)
	if err != nil {
		fmt.Printf("recalculation failed: %v\n", err)
		return
	}
	for _, r := range report.Results {
		if r.Difference != 0 {
			fmt.Printf("Repaired drift on %s: %.2f -> %.2f\n", r.ItemID, r.OldQuantity, r.NewQuantity)
		}
	}

	cleaner := maintenance.NewCleaner(txlog, tasks, nil, 0)
	deleted, err := cleaner.CleanupDeletedTaskReservations(ctx)
	if err != nil {
		fmt.Printf("cleanup failed: %v\n", err)
		return
	}
	fmt.Printf("Cleanup removed %d orphaned reservations\n", deleted)
}

func setupBakery(ctx context.Context, items *memory.ItemStore, batches *memory.BatchStore, tasks *memory.TaskStore) {
	flour, _ := entities.NewInventoryItem("FLOUR", "Wheat flour", "kg", 0)
	flour.Quantity = 70 // stale aggregate; true batch sum is 75
	_ = items.SaveItem(ctx, flour)

	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	may := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	received := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)

	_ = batches.SaveBatch(ctx, &entities.Batch{
		ID: "LOT-FEB", ItemID: "FLOUR", WarehouseID: "MAIN",
		Quantity: 25, UnitPrice: decimal.New(85, -2), ExpiryDate: &feb, ReceivedDate: received,
	})
	_ = batches.SaveBatch(ctx, &entities.Batch{
		ID: "LOT-MAY", ItemID: "FLOUR", WarehouseID: "MAIN",
		Quantity: 50, UnitPrice: decimal.New(90, -2), ExpiryDate: &may, ReceivedDate: received,
	})

	tasks.LoadTask(entities.Task{
		ID:     "TASK-BREAD",
		Number: "2026-015",
		Status: entities.TaskInProgress,
		Requirements: []entities.MaterialRequirement{
			{ID: "REQ-FLOUR", MaterialID: "FLOUR", Quantity: 40},
		},
	})
}
