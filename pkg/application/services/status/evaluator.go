package status

import (
	"context"
	"fmt"

	"github.com/aereven/stockbook/pkg/domain/repositories"
	"github.com/aereven/stockbook/pkg/infrastructure/cache"
)

// Evaluator is the store-backed read side of the aggregator: it snapshots a
// task and its active bookings, derives the state, and memoizes the result in
// an injected bounded TTL cache. The cache is an optimization for hot list
// views only; the state itself is always recomputable from the records.
type Evaluator struct {
	tasks   repositories.TaskRepository
	log     repositories.TransactionLog
	results *cache.TTLCache[string, Result]
}

// NewEvaluator creates an evaluator. The cache may be nil, in which case
// every call recomputes.
func NewEvaluator(tasks repositories.TaskRepository, log repositories.TransactionLog, results *cache.TTLCache[string, Result]) *Evaluator {
	return &Evaluator{tasks: tasks, log: log, results: results}
}

// TaskStatus returns the reservation state for one task id.
func (e *Evaluator) TaskStatus(ctx context.Context, taskID string) (Result, error) {
	if e.results != nil {
		if cached, ok := e.results.Get(taskID); ok {
			return cached, nil
		}
	}

	task, err := e.tasks.GetTask(ctx, taskID)
	if err != nil {
		return Result{}, fmt.Errorf("load task %s: %w", taskID, err)
	}

	bookings, err := e.log.ListBookings(ctx, repositories.BookingFilter{ReferenceID: taskID})
	if err != nil {
		return Result{}, fmt.Errorf("load bookings for task %s: %w", taskID, err)
	}

	result := Evaluate(task, ReservedByMaterial(bookings))
	if e.results != nil {
		e.results.Set(taskID, result)
	}
	return result, nil
}

// Invalidate drops a task's cached result after its bookings changed.
func (e *Evaluator) Invalidate(taskID string) {
	if e.results != nil {
		e.results.Delete(taskID)
	}
}
