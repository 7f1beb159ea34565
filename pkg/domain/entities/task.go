package entities

import "fmt"

// TaskStatus represents the lifecycle state of a production task as the task
// store reports it. Only Completed matters to this core: together with a
// confirmed consumption plan it makes the reservation status terminal.
type TaskStatus int

const (
	TaskPlanned TaskStatus = iota
	TaskInProgress
	TaskCompleted
	TaskCancelled
)

// String method for TaskStatus enum
func (s TaskStatus) String() string {
	switch s {
	case TaskPlanned:
		return "Planned"
	case TaskInProgress:
		return "InProgress"
	case TaskCompleted:
		return "Completed"
	case TaskCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// MaterialRequirement is one line of a task's bill of materials: the planned
// quantity of one material. The planned value may be superseded by an
// ActualMaterialUsage override on the task, keyed by the requirement id.
type MaterialRequirement struct {
	ID         string
	MaterialID string
	Quantity   float64
}

// PlannedQuantity resolves the requirement's effective plan value, preferring
// an actual-usage override when one exists for this requirement.
func (r MaterialRequirement) PlannedQuantity(overrides map[string]float64) float64 {
	if overrides != nil {
		if v, ok := overrides[r.ID]; ok {
			return v
		}
	}
	return r.Quantity
}

// Task is a read-only snapshot of a production task as supplied by the task
// store: its requirement list, usage overrides, the consumption ledger rows
// recorded against it, the current per-material batch reservation snapshot,
// and the confirmation flag that freezes the plan.
type Task struct {
	ID                           string
	Number                       string
	Status                       TaskStatus
	Requirements                 []MaterialRequirement
	ActualMaterialUsage          map[string]float64            // requirement id -> revised quantity
	ConsumedMaterials            []ConsumedMaterial
	MaterialBatches              map[string]map[string]float64 // material id -> batch id -> reserved quantity
	MaterialConsumptionConfirmed bool
}

// RequirementFor returns the requirement line for a material, or
// ErrMaterialNotFound when the material is not part of this task's plan.
func (t *Task) RequirementFor(materialID string) (MaterialRequirement, error) {
	for _, req := range t.Requirements {
		if req.MaterialID == materialID {
			return req, nil
		}
	}
	return MaterialRequirement{}, fmt.Errorf("task %s: %w: %s", t.ID, ErrMaterialNotFound, materialID)
}

// ConsumedQuantity sums the task's consumption ledger for one material.
func (t *Task) ConsumedQuantity(materialID string) float64 {
	var total float64
	for _, c := range t.ConsumedMaterials {
		if c.MaterialID == materialID {
			total += c.Quantity
		}
	}
	return total
}

// ReservedBatches returns the batch ids currently reserved for a material on
// this task. Used by the selector to keep an existing allocation stable.
func (t *Task) ReservedBatches(materialID string) map[string]float64 {
	if t.MaterialBatches == nil {
		return nil
	}
	return t.MaterialBatches[materialID]
}
