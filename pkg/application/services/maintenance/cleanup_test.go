package maintenance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
	"github.com/aereven/stockbook/pkg/infrastructure/repositories/memory"
)

func addBooking(t *testing.T, txlog *memory.TransactionLog, id, taskID string, quantity float64) {
	t.Helper()
	booking, err := entities.NewReservation(id, "MAT1", "B1", quantity, taskID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create reservation: %v", err)
	}
	if err := txlog.AppendBooking(context.Background(), booking); err != nil {
		t.Fatalf("Failed to append booking: %v", err)
	}
}

func TestCleanupDeletedTaskReservations(t *testing.T) {
	txlog := memory.NewTransactionLog()
	tasks := memory.NewTaskStore()

	tasks.LoadTask(entities.Task{ID: "LIVE"})
	addBooking(t, txlog, "R1", "LIVE", 10)
	addBooking(t, txlog, "R2", "GONE", 5)
	addBooking(t, txlog, "R3", "GONE", 3)

	c := NewCleaner(txlog, tasks, nil, 0)

	deleted, err := c.CleanupDeletedTaskReservations(context.Background())
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 orphaned bookings deleted, got %d", deleted)
	}

	remaining, err := txlog.ListBookings(context.Background(), repositories.BookingFilter{})
	if err != nil {
		t.Fatalf("Failed to list bookings: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ReferenceID != "LIVE" {
		t.Errorf("Expected only the live task's booking to survive, got %v", remaining)
	}

	// Second run is a no-op.
	deleted, err = c.CleanupDeletedTaskReservations(context.Background())
	if err != nil {
		t.Fatalf("Second cleanup failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected second run to delete nothing, got %d", deleted)
	}
}

func TestCleanupDeletedTaskReservations_ChunksExistenceQueries(t *testing.T) {
	txlog := memory.NewTransactionLog()
	tasks := memory.NewTaskStore()

	// More distinct tasks than one existence query may carry: the memory
	// store rejects oversized id sets, so this only passes if the cleaner
	// chunks correctly. Every third task is deleted.
	total := repositories.ExistenceBatchLimit*2 + 5
	expectedDeleted := 0
	for i := 0; i < total; i++ {
		taskID := fmt.Sprintf("TASK%03d", i)
		if i%3 == 0 {
			expectedDeleted++
		} else {
			tasks.LoadTask(entities.Task{ID: taskID})
		}
		addBooking(t, txlog, fmt.Sprintf("R%03d", i), taskID, 1)
	}

	c := NewCleaner(txlog, tasks, nil, 0)

	deleted, err := c.CleanupDeletedTaskReservations(context.Background())
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != expectedDeleted {
		t.Errorf("Expected %d deletions, got %d", expectedDeleted, deleted)
	}
}

func TestCleanupMicroReservations(t *testing.T) {
	txlog := memory.NewTransactionLog()
	tasks := memory.NewTaskStore()

	addBooking(t, txlog, "R1", "TASK1", 10)
	addBooking(t, txlog, "R2", "TASK1", 1e-9)
	addBooking(t, txlog, "R3", "TASK1", 0)

	c := NewCleaner(txlog, tasks, nil, 0)

	deleted, err := c.CleanupMicroReservations(context.Background())
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 micro reservations deleted, got %d", deleted)
	}

	remaining, err := txlog.ListBookings(context.Background(), repositories.BookingFilter{})
	if err != nil {
		t.Fatalf("Failed to list bookings: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "R1" {
		t.Errorf("Expected only the real booking to survive, got %v", remaining)
	}
}

func TestCleanupMicroReservations_CustomEpsilon(t *testing.T) {
	txlog := memory.NewTransactionLog()
	addBooking(t, txlog, "R1", "TASK1", 0.4)
	addBooking(t, txlog, "R2", "TASK1", 0.6)

	c := NewCleaner(txlog, memory.NewTaskStore(), nil, 0.5)

	deleted, err := c.CleanupMicroReservations(context.Background())
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deletion under epsilon 0.5, got %d", deleted)
	}
}
