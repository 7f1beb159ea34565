package status

import (
	"context"
	"testing"
	"time"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/infrastructure/cache"
	"github.com/aereven/stockbook/pkg/infrastructure/repositories/memory"
)

func evaluatorFixture(t *testing.T) (*Evaluator, *memory.TaskStore, *memory.TransactionLog) {
	t.Helper()

	tasks := memory.NewTaskStore()
	txlog := memory.NewTransactionLog()

	tasks.LoadTask(entities.Task{
		ID: "TASK1",
		Requirements: []entities.MaterialRequirement{
			{ID: "REQ1", MaterialID: "MAT1", Quantity: 50},
		},
	})

	results := cache.NewTTLCache[string, Result](cache.Config{MaxEntries: 16, TTL: time.Minute})
	return NewEvaluator(tasks, txlog, results), tasks, txlog
}

func TestEvaluator_TaskStatus(t *testing.T) {
	ev, _, txlog := evaluatorFixture(t)

	result, err := ev.TaskStatus(context.Background(), "TASK1")
	if err != nil {
		t.Fatalf("Expected status, got error: %v", err)
	}
	if result.State != NotReserved {
		t.Errorf("Expected NotReserved, got %s", result.State)
	}

	booking, err := entities.NewReservation("R1", "MAT1", "B1", 50, "TASK1", time.Now())
	if err != nil {
		t.Fatalf("Failed to create reservation: %v", err)
	}
	if err := txlog.AppendBooking(context.Background(), booking); err != nil {
		t.Fatalf("Failed to append booking: %v", err)
	}

	// Still cached from before the booking.
	result, err = ev.TaskStatus(context.Background(), "TASK1")
	if err != nil {
		t.Fatalf("Expected status, got error: %v", err)
	}
	if result.State != NotReserved {
		t.Errorf("Expected cached NotReserved, got %s", result.State)
	}

	ev.Invalidate("TASK1")
	result, err = ev.TaskStatus(context.Background(), "TASK1")
	if err != nil {
		t.Fatalf("Expected status, got error: %v", err)
	}
	if result.State != FullyReserved {
		t.Errorf("Expected FullyReserved after invalidation, got %s", result.State)
	}
}

func TestEvaluator_UnknownTask(t *testing.T) {
	ev, _, _ := evaluatorFixture(t)

	if _, err := ev.TaskStatus(context.Background(), "NOPE"); err == nil {
		t.Fatal("Expected error for unknown task, got none")
	}
}
