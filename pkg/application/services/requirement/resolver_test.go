package requirement

import (
	"errors"
	"testing"

	"github.com/aereven/stockbook/pkg/domain/entities"
)

func TestRequiredQuantity(t *testing.T) {
	req := entities.MaterialRequirement{ID: "REQ1", MaterialID: "MAT1", Quantity: 100}

	testCases := []struct {
		name      string
		overrides map[string]float64
		consumed  float64
		confirmed bool
		expect    float64
	}{
		{"unconfirmed returns full plan", nil, 30, false, 100},
		{"confirmed returns remainder", nil, 30, true, 70},
		{"confirmed fully consumed", nil, 100, true, 0},
		{"confirmed over-consumed floors at zero", nil, 130, true, 0},
		{"override replaces plan when unconfirmed", map[string]float64{"REQ1": 80}, 30, false, 80},
		{"override replaces plan when confirmed", map[string]float64{"REQ1": 80}, 30, true, 50},
		{"override for other requirement ignored", map[string]float64{"REQ2": 80}, 0, false, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := RequiredQuantity(req, tc.overrides, tc.consumed, tc.confirmed)
			if got != tc.expect {
				t.Errorf("Expected required %v, got %v", tc.expect, got)
			}
		})
	}
}

func TestRequiredQuantity_Idempotent(t *testing.T) {
	req := entities.MaterialRequirement{ID: "REQ1", MaterialID: "MAT1", Quantity: 100}

	first := RequiredQuantity(req, nil, 30, true)
	second := RequiredQuantity(req, nil, 30, true)
	if first != second {
		t.Errorf("Expected identical results for fixed inputs, got %v then %v", first, second)
	}
	if first != 70 {
		t.Errorf("Expected 70, got %v", first)
	}
}

func TestRequiredForTask(t *testing.T) {
	task := &entities.Task{
		ID: "TASK1",
		Requirements: []entities.MaterialRequirement{
			{ID: "REQ1", MaterialID: "MAT1", Quantity: 50},
		},
		ConsumedMaterials: []entities.ConsumedMaterial{
			{MaterialID: "MAT1", Quantity: 20},
		},
		MaterialConsumptionConfirmed: true,
	}

	got, err := RequiredForTask(task, "MAT1")
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if got != 30 {
		t.Errorf("Expected required 30, got %v", got)
	}
}

func TestRequiredForTask_UnknownMaterial(t *testing.T) {
	task := &entities.Task{
		ID: "TASK1",
		Requirements: []entities.MaterialRequirement{
			{ID: "REQ1", MaterialID: "MAT1", Quantity: 50},
		},
	}

	_, err := RequiredForTask(task, "MAT2")
	if err == nil {
		t.Fatal("Expected error for unknown material, got none")
	}
	if !errors.Is(err, entities.ErrMaterialNotFound) {
		t.Errorf("Expected ErrMaterialNotFound, got %v", err)
	}
}
