package status

import (
	"testing"

	"github.com/aereven/stockbook/pkg/domain/entities"
)

func singleMaterialTask(required float64) *entities.Task {
	return &entities.Task{
		ID: "TASK1",
		Requirements: []entities.MaterialRequirement{
			{ID: "REQ1", MaterialID: "MAT1", Quantity: required},
		},
	}
}

func TestEvaluate_NoMaterials(t *testing.T) {
	result := Evaluate(&entities.Task{ID: "TASK1"}, nil)
	if result.State != NoMaterials {
		t.Errorf("Expected NoMaterials, got %s", result.State)
	}
}

func TestEvaluate_StatusMonotonicity(t *testing.T) {
	task := singleMaterialTask(50)

	testCases := []struct {
		name     string
		reserved float64
		expect   State
	}{
		{"nothing covered", 0, NotReserved},
		{"half covered", 25, PartiallyReserved},
		{"fully covered", 50, FullyReserved},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Evaluate(task, map[string]float64{"MAT1": tc.reserved})
			if result.State != tc.expect {
				t.Errorf("Expected %s at reserved=%v, got %s", tc.expect, tc.reserved, result.State)
			}
		})
	}
}

func TestEvaluate_ThresholdAbsorbsNoise(t *testing.T) {
	task := singleMaterialTask(50)

	// 99% coverage already counts as fully reserved.
	result := Evaluate(task, map[string]float64{"MAT1": 49.5})
	if result.State != FullyReserved {
		t.Errorf("Expected FullyReserved at ratio 0.99, got %s", result.State)
	}

	result = Evaluate(task, map[string]float64{"MAT1": 49.4})
	if result.State != PartiallyReserved {
		t.Errorf("Expected PartiallyReserved just under threshold, got %s", result.State)
	}
}

func TestEvaluate_CompletedOverride(t *testing.T) {
	task := singleMaterialTask(50)
	task.Status = entities.TaskCompleted
	task.MaterialConsumptionConfirmed = true

	// Only 40% coverage, but the terminal state wins.
	result := Evaluate(task, map[string]float64{"MAT1": 20})
	if result.State != CompletedConfirmed {
		t.Errorf("Expected CompletedConfirmed, got %s", result.State)
	}
}

func TestEvaluate_CompletedWithoutConfirmationFollowsRatio(t *testing.T) {
	task := singleMaterialTask(50)
	task.Status = entities.TaskCompleted

	result := Evaluate(task, map[string]float64{"MAT1": 20})
	if result.State != PartiallyReserved {
		t.Errorf("Expected PartiallyReserved without confirmation, got %s", result.State)
	}
}

func TestEvaluate_ConsumptionCountsAsCoverage(t *testing.T) {
	task := singleMaterialTask(50)
	task.ConsumedMaterials = []entities.ConsumedMaterial{{MaterialID: "MAT1", Quantity: 30}}

	result := Evaluate(task, map[string]float64{"MAT1": 20})
	if result.State != FullyReserved {
		t.Errorf("Expected consumed+reserved=50 to be FullyReserved, got %s", result.State)
	}
}

func TestEvaluate_CoverageClampedPerMaterial(t *testing.T) {
	// Over-coverage of one material must not compensate a bare one.
	task := &entities.Task{
		ID: "TASK1",
		Requirements: []entities.MaterialRequirement{
			{ID: "REQ1", MaterialID: "MAT1", Quantity: 50},
			{ID: "REQ2", MaterialID: "MAT2", Quantity: 50},
		},
	}

	result := Evaluate(task, map[string]float64{"MAT1": 500})
	if result.State != PartiallyReserved {
		t.Errorf("Expected PartiallyReserved, got %s", result.State)
	}
	if result.TotalCovered != 50 {
		t.Errorf("Expected clamped coverage 50, got %v", result.TotalCovered)
	}
}

func TestEvaluate_NothingLeftRequired(t *testing.T) {
	// Plan confirmed and fully consumed: required collapses to zero but the
	// task is covered, not unreserved.
	task := singleMaterialTask(50)
	task.MaterialConsumptionConfirmed = true
	task.ConsumedMaterials = []entities.ConsumedMaterial{{MaterialID: "MAT1", Quantity: 50}}

	result := Evaluate(task, nil)
	if result.State != FullyReserved {
		t.Errorf("Expected FullyReserved when nothing is left to hold, got %s", result.State)
	}
}

func TestReservedByMaterial(t *testing.T) {
	bookings := []*entities.Reservation{
		{ID: "R1", ItemID: "MAT1", Quantity: 10},
		{ID: "R2", ItemID: "MAT1", Quantity: 5},
		{ID: "R3", ItemID: "MAT2", Quantity: 7, Fulfilled: true},
	}

	sums := ReservedByMaterial(bookings)
	if sums["MAT1"] != 15 {
		t.Errorf("Expected MAT1 sum 15, got %v", sums["MAT1"])
	}
	if _, ok := sums["MAT2"]; ok {
		t.Error("Expected fulfilled booking to be skipped")
	}
}

func TestState_Display(t *testing.T) {
	if NotReserved.Label() != "Not reserved" {
		t.Errorf("Unexpected label %q", NotReserved.Label())
	}
	if NotReserved.SeverityClass() != "danger" {
		t.Errorf("Unexpected severity %q", NotReserved.SeverityClass())
	}
	if CompletedConfirmed.SeverityClass() != "success" {
		t.Errorf("Unexpected severity %q", CompletedConfirmed.SeverityClass())
	}
}
