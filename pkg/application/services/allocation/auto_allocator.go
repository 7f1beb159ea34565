package allocation

// BatchAllocation is one line of an automatic allocation result.
type BatchAllocation struct {
	BatchID  string
	Quantity float64
}

// AutoResult is the outcome of an automatic allocation pass.
type AutoResult struct {
	Allocations     []BatchAllocation
	AllocatedQty    float64
	RemainingDemand float64
}

// AutoAllocate greedily draws the required quantity from a ranked candidate
// list: it walks the FEFO order and takes min(remaining, effectiveQuantity)
// from each batch until the requirement is satisfied or the candidates are
// exhausted. A non-zero RemainingDemand means the stock on hand cannot cover
// the requirement and the reservation stays partial.
func AutoAllocate(required float64, ranked []CandidateBatch) *AutoResult {
	result := &AutoResult{
		Allocations:     []BatchAllocation{},
		RemainingDemand: required,
	}

	remaining := required
	for _, c := range ranked {
		if remaining <= 0 {
			break
		}

		allocQty := remaining
		if eff := c.EffectiveQuantity(); allocQty > eff {
			allocQty = eff
		}
		if allocQty <= 0 {
			continue
		}

		result.Allocations = append(result.Allocations, BatchAllocation{
			BatchID:  c.ID,
			Quantity: allocQty,
		})
		result.AllocatedQty += allocQty
		remaining -= allocQty
	}

	result.RemainingDemand = remaining
	if result.RemainingDemand < 0 {
		result.RemainingDemand = 0
	}
	return result
}
