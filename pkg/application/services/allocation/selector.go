package allocation

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// CandidateBatch is one lot offered to the selector: its remaining physical
// quantity, the amount other tasks already hold against it, and its expiry.
type CandidateBatch struct {
	ID              string
	Quantity        float64
	ReservedByOthers float64
	ExpiryDate      *time.Time
}

// EffectiveQuantity is what the current task can still draw from the batch:
// remaining quantity minus what other tasks hold, floored at zero.
func (c CandidateBatch) EffectiveQuantity() float64 {
	eff := c.Quantity - c.ReservedByOthers
	if eff < 0 {
		return 0
	}
	return eff
}

// expiresBefore orders candidates for FEFO: a dated batch sorts before an
// undated one (no expiry is treated as the furthest possible date).
func (c CandidateBatch) expiresBefore(other CandidateBatch) bool {
	if c.ExpiryDate == nil {
		return false
	}
	if other.ExpiryDate == nil {
		return true
	}
	return c.ExpiryDate.Before(*other.ExpiryDate)
}

// Rank orders and filters candidate batches for allocation.
//
// Batches already reserved for the current task sort first, so an existing
// allocation never reshuffles under the operator; within each group batches
// sort by ascending expiry, undated last, with the batch id as a stable
// tie-break. Batches with zero effective quantity are dropped unless they are
// already reserved for this task, which keeps an exhausted lot visible and
// editable instead of silently vanishing from the picker.
func Rank(candidates []CandidateBatch, reservedForTask map[string]float64) []CandidateBatch {
	ranked := make([]CandidateBatch, 0, len(candidates))
	for _, c := range candidates {
		_, reserved := reservedForTask[c.ID]
		if c.EffectiveQuantity() <= 0 && !reserved {
			continue
		}
		ranked = append(ranked, c)
	}

	sort.Slice(ranked, func(i, j int) bool {
		_, iReserved := reservedForTask[ranked[i].ID]
		_, jReserved := reservedForTask[ranked[j].ID]
		if iReserved != jReserved {
			return iReserved
		}
		if ranked[i].expiresBefore(ranked[j]) {
			return true
		}
		if ranked[j].expiresBefore(ranked[i]) {
			return false
		}
		return ranked[i].ID < ranked[j].ID
	})

	return ranked
}

// Selection maps batch id to the quantity the operator picked from it.
type Selection map[string]float64

// ValidateSelection checks a manual selection against the candidate list.
// Every selected quantity must be a finite number in [0, effectiveQuantity]
// for a known batch; the first violation is returned and nothing is written.
func ValidateSelection(selected Selection, candidates []CandidateBatch) error {
	byID := make(map[string]CandidateBatch, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	for batchID, qty := range selected {
		c, ok := byID[batchID]
		if !ok {
			return fmt.Errorf("selection references unknown batch %s", batchID)
		}
		if math.IsNaN(qty) || math.IsInf(qty, 0) {
			return fmt.Errorf("selection for batch %s is not a number", batchID)
		}
		if qty < 0 {
			return fmt.Errorf("selection for batch %s cannot be negative, got %v", batchID, qty)
		}
		if eff := c.EffectiveQuantity(); qty > eff {
			return fmt.Errorf("selection for batch %s exceeds effective quantity: %v > %v", batchID, qty, eff)
		}
	}
	return nil
}

// ClampSelection returns a copy of the selection with every quantity forced
// into [0, effectiveQuantity]. Unknown batch ids are dropped.
func ClampSelection(selected Selection, candidates []CandidateBatch) Selection {
	byID := make(map[string]CandidateBatch, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	clamped := make(Selection, len(selected))
	for batchID, qty := range selected {
		c, ok := byID[batchID]
		if !ok {
			continue
		}
		if math.IsNaN(qty) || qty < 0 {
			qty = 0
		}
		if eff := c.EffectiveQuantity(); qty > eff {
			qty = eff
		}
		clamped[batchID] = qty
	}
	return clamped
}

// Preview summarizes a selection against the required quantity. Under- and
// over-allocation are advisory: a short selection is a valid partial
// reservation to be completed later, and Complete just reports whether the
// sum already covers the requirement.
type Preview struct {
	Required    float64
	SumSelected float64
	Complete    bool
	Shortfall   float64
}

// PreviewSelection computes the advisory completeness summary for a selection.
func PreviewSelection(selected Selection, required float64) Preview {
	var sum float64
	for _, qty := range selected {
		sum += qty
	}

	p := Preview{
		Required:    required,
		SumSelected: sum,
		Complete:    sum >= required,
	}
	if !p.Complete {
		p.Shortfall = required - sum
	}
	return p
}
