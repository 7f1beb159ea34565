package status

import (
	"github.com/aereven/stockbook/pkg/application/services/requirement"
	"github.com/aereven/stockbook/pkg/domain/entities"
)

// State is the task-level reservation state derived from a task's material
// requirements. It is recomputed from the underlying records on every
// evaluation and never persisted, so it cannot drift from them.
type State int

const (
	NoMaterials State = iota
	NotReserved
	PartiallyReserved
	FullyReserved
	CompletedConfirmed
)

// String method for State enum
func (s State) String() string {
	switch s {
	case NoMaterials:
		return "NoMaterials"
	case NotReserved:
		return "NotReserved"
	case PartiallyReserved:
		return "PartiallyReserved"
	case FullyReserved:
		return "FullyReserved"
	case CompletedConfirmed:
		return "CompletedConfirmed"
	default:
		return "Unknown"
	}
}

// Label returns the human-readable display label for the state.
func (s State) Label() string {
	switch s {
	case NoMaterials:
		return "No materials"
	case NotReserved:
		return "Not reserved"
	case PartiallyReserved:
		return "Partially reserved"
	case FullyReserved:
		return "Fully reserved"
	case CompletedConfirmed:
		return "Completed"
	default:
		return "Unknown"
	}
}

// SeverityClass returns the display color class for the state.
func (s State) SeverityClass() string {
	switch s {
	case NotReserved:
		return "danger"
	case PartiallyReserved:
		return "warning"
	case FullyReserved, CompletedConfirmed:
		return "success"
	default:
		return "neutral"
	}
}

// FullCoverageThreshold is the coverage ratio at which a task counts as fully
// reserved. The gap to 1.0 absorbs floating-point noise from accumulating
// many partial quantities.
const FullCoverageThreshold = 0.99

// Result carries the derived state together with the totals it came from.
type Result struct {
	State         State
	TotalRequired float64
	TotalCovered  float64
	Ratio         float64
}

// Evaluate derives the reservation state for a task snapshot.
// reservedByMaterial holds the sum of active reservation quantities per
// material id, as read from the transaction log.
//
// Rule order: a task without requirements is NoMaterials; a completed task
// with a confirmed consumption plan is CompletedConfirmed regardless of
// coverage; otherwise the state follows the clamped coverage ratio.
func Evaluate(task *entities.Task, reservedByMaterial map[string]float64) Result {
	if len(task.Requirements) == 0 {
		return Result{State: NoMaterials}
	}

	if task.Status == entities.TaskCompleted && task.MaterialConsumptionConfirmed {
		return Result{State: CompletedConfirmed}
	}

	var totalRequired, totalCovered float64
	hasCoverage := false

	for _, req := range task.Requirements {
		consumed := task.ConsumedQuantity(req.MaterialID)
		reserved := reservedByMaterial[req.MaterialID]
		required := requirement.RequiredQuantity(req, task.ActualMaterialUsage, consumed, task.MaterialConsumptionConfirmed)

		if consumed+reserved > 0 {
			hasCoverage = true
		}

		covered := consumed + reserved
		if covered > required {
			covered = required
		}
		totalRequired += required
		totalCovered += covered
	}

	result := Result{
		TotalRequired: totalRequired,
		TotalCovered:  totalCovered,
	}

	if !hasCoverage {
		result.State = NotReserved
		return result
	}
	if totalRequired <= 0 {
		// Everything that was ever required is already covered.
		result.State = FullyReserved
		result.Ratio = 1
		return result
	}

	result.Ratio = totalCovered / totalRequired
	switch {
	case result.Ratio >= FullCoverageThreshold:
		result.State = FullyReserved
	case result.Ratio > 0:
		result.State = PartiallyReserved
	default:
		result.State = NotReserved
	}
	return result
}

// ReservedByMaterial folds active bookings into per-material sums for
// Evaluate. Fulfilled bookings no longer hold stock and are skipped.
func ReservedByMaterial(bookings []*entities.Reservation) map[string]float64 {
	sums := make(map[string]float64, len(bookings))
	for _, b := range bookings {
		if b.Fulfilled {
			continue
		}
		sums[b.ItemID] += b.Quantity
	}
	return sums
}
