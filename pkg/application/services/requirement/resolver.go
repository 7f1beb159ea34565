package requirement

import (
	"github.com/aereven/stockbook/pkg/domain/entities"
)

// RequiredQuantity computes how much of a material still needs to be held in
// reservation for one requirement line. It is a pure function of its inputs;
// both the allocator and the selection validator call it so the two can never
// disagree on the required amount.
//
// While consumption is unconfirmed the whole (possibly revised) plan must stay
// covered, because nothing has been finalized yet. Once the plan is confirmed,
// only the unconsumed remainder still needs holding.
func RequiredQuantity(req entities.MaterialRequirement, overrides map[string]float64, consumed float64, confirmed bool) float64 {
	planned := req.PlannedQuantity(overrides)
	if !confirmed {
		return planned
	}
	remaining := planned - consumed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RequiredForTask resolves the still-to-reserve quantity of one material on a
// task snapshot. Returns entities.ErrMaterialNotFound (wrapped) when the
// material is not part of the task's plan.
func RequiredForTask(task *entities.Task, materialID string) (float64, error) {
	req, err := task.RequirementFor(materialID)
	if err != nil {
		return 0, err
	}
	consumed := task.ConsumedQuantity(materialID)
	return RequiredQuantity(req, task.ActualMaterialUsage, consumed, task.MaterialConsumptionConfirmed), nil
}
