package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
)

// TaskStore provides the in-memory read-only task view, with load helpers
// for fixtures.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]entities.Task
}

// NewTaskStore creates an empty in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]entities.Task)}
}

// Verify interface compliance
var _ repositories.TaskRepository = (*TaskStore)(nil)

// LoadTask inserts or replaces a task snapshot.
func (s *TaskStore) LoadTask(task entities.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
}

// RemoveTask deletes a task, simulating task deletion by the owning system.
func (s *TaskStore) RemoveTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// GetTask returns the task with the given id.
func (s *TaskStore) GetTask(ctx context.Context, id string) (*entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrTaskNotFound, id)
	}
	return &task, nil
}

// ExistingTaskIDs reports which ids refer to stored tasks. Enforces the
// batched existence query limit the persistent backend imposes.
func (s *TaskStore) ExistingTaskIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if len(ids) > repositories.ExistenceBatchLimit {
		return nil, fmt.Errorf("existence query limited to %d ids, got %d", repositories.ExistenceBatchLimit, len(ids))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	exists := make(map[string]bool, len(ids))
	for _, id := range ids {
		_, ok := s.tasks[id]
		exists[id] = ok
	}
	return exists, nil
}
