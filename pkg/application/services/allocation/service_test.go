package allocation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
	"github.com/aereven/stockbook/pkg/infrastructure/repositories/memory"
)

func newFixture(t *testing.T) (*Service, *memory.TaskStore, *memory.TransactionLog) {
	t.Helper()

	tasks := memory.NewTaskStore()
	batches := memory.NewBatchStore()
	txlog := memory.NewTransactionLog()

	tasks.LoadTask(entities.Task{
		ID: "TASK1",
		Requirements: []entities.MaterialRequirement{
			{ID: "REQ1", MaterialID: "MAT1", Quantity: 50},
		},
	})

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	received := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	for _, b := range []*entities.Batch{
		{ID: "B1", ItemID: "MAT1", Quantity: 30, UnitPrice: decimal.New(5, 0), ExpiryDate: &jan, ReceivedDate: received},
		{ID: "B2", ItemID: "MAT1", Quantity: 40, UnitPrice: decimal.New(6, 0), ExpiryDate: &mar, ReceivedDate: received},
	} {
		if err := batches.SaveBatch(context.Background(), b); err != nil {
			t.Fatalf("Failed to save batch: %v", err)
		}
	}

	// Another task already holds 35 of B2, leaving 5 effective.
	other, err := entities.NewReservation("BOOK-OTHER", "MAT1", "B2", 35, "TASK2", received)
	if err != nil {
		t.Fatalf("Failed to create reservation: %v", err)
	}
	if err := txlog.AppendBooking(context.Background(), other); err != nil {
		t.Fatalf("Failed to append booking: %v", err)
	}

	return NewService(tasks, batches, txlog), tasks, txlog
}

func taskBookings(t *testing.T, txlog *memory.TransactionLog, taskID string) []*entities.Reservation {
	t.Helper()
	bookings, err := txlog.ListBookings(context.Background(), repositories.BookingFilter{ReferenceID: taskID})
	if err != nil {
		t.Fatalf("Failed to list bookings: %v", err)
	}
	return bookings
}

func TestLoadCandidates(t *testing.T) {
	svc, _, _ := newFixture(t)

	set, err := svc.LoadCandidates(context.Background(), "TASK1", "MAT1")
	if err != nil {
		t.Fatalf("Expected candidates, got error: %v", err)
	}

	if set.Required != 50 {
		t.Errorf("Expected required 50, got %v", set.Required)
	}
	if len(set.Candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(set.Candidates))
	}
	if set.Candidates[0].ID != "B1" {
		t.Errorf("Expected B1 first by expiry, got %s", set.Candidates[0].ID)
	}
	if eff := set.Candidates[1].EffectiveQuantity(); eff != 5 {
		t.Errorf("Expected B2 effective 5 after other task's hold, got %v", eff)
	}
}

func TestLoadCandidates_UnknownMaterial(t *testing.T) {
	svc, _, _ := newFixture(t)

	if _, err := svc.LoadCandidates(context.Background(), "TASK1", "NOPE"); err == nil {
		t.Fatal("Expected error for unknown material, got none")
	}
}

func TestReserveAuto(t *testing.T) {
	svc, _, txlog := newFixture(t)

	result, err := svc.ReserveAuto(context.Background(), "TASK1", "MAT1")
	if err != nil {
		t.Fatalf("Expected auto reservation to succeed: %v", err)
	}

	if result.AllocatedQty != 35 {
		t.Errorf("Expected 35 allocated (30 from B1, 5 from B2), got %v", result.AllocatedQty)
	}
	if result.RemainingDemand != 15 {
		t.Errorf("Expected remaining demand 15, got %v", result.RemainingDemand)
	}

	bookings := taskBookings(t, txlog, "TASK1")
	if len(bookings) != 2 {
		t.Fatalf("Expected 2 bookings written, got %d", len(bookings))
	}
}

func TestReserveManual_ReplacesExisting(t *testing.T) {
	svc, _, txlog := newFixture(t)

	if _, err := svc.ReserveManual(context.Background(), "TASK1", "MAT1", Selection{"B1": 20}); err != nil {
		t.Fatalf("First manual reservation failed: %v", err)
	}
	preview, err := svc.ReserveManual(context.Background(), "TASK1", "MAT1", Selection{"B1": 30, "B2": 5})
	if err != nil {
		t.Fatalf("Second manual reservation failed: %v", err)
	}

	if preview.Complete {
		t.Error("Expected 35 of 50 to report incomplete")
	}
	if preview.Shortfall != 15 {
		t.Errorf("Expected shortfall 15, got %v", preview.Shortfall)
	}

	bookings := taskBookings(t, txlog, "TASK1")
	if len(bookings) != 2 {
		t.Fatalf("Expected old bookings replaced, got %d bookings", len(bookings))
	}
	var total float64
	for _, b := range bookings {
		total += b.Quantity
	}
	if total != 35 {
		t.Errorf("Expected total held 35, got %v", total)
	}
}

func TestReserveManual_RejectsOversubscription(t *testing.T) {
	svc, _, txlog := newFixture(t)

	// B2 only has 5 effective after the other task's hold.
	_, err := svc.ReserveManual(context.Background(), "TASK1", "MAT1", Selection{"B2": 10})
	if err == nil {
		t.Fatal("Expected oversubscription to be rejected")
	}

	if got := taskBookings(t, txlog, "TASK1"); len(got) != 0 {
		t.Errorf("Expected no bookings written after rejection, got %d", len(got))
	}
}

func TestReleaseForTask(t *testing.T) {
	svc, _, txlog := newFixture(t)

	if _, err := svc.ReserveAuto(context.Background(), "TASK1", "MAT1"); err != nil {
		t.Fatalf("Auto reservation failed: %v", err)
	}
	if err := svc.ReleaseForTask(context.Background(), "TASK1", "MAT1"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if got := taskBookings(t, txlog, "TASK1"); len(got) != 0 {
		t.Errorf("Expected no bookings after release, got %d", len(got))
	}

	// The other task's hold is untouched.
	otherBookings := taskBookings(t, txlog, "TASK2")
	if len(otherBookings) != 1 {
		t.Errorf("Expected other task's booking preserved, got %d", len(otherBookings))
	}
}
