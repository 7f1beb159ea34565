package repositories

import (
	"context"

	"github.com/aereven/stockbook/pkg/domain/entities"
)

// ExistenceBatchLimit is the maximum number of ids one ExistingTaskIDs call
// may carry. It mirrors the backend's batched "id in set" query cap; callers
// holding more ids must chunk.
const ExistenceBatchLimit = 30

// TaskRepository is the read-only view this core has of production tasks.
type TaskRepository interface {
	GetTask(ctx context.Context, id string) (*entities.Task, error)

	// ExistingTaskIDs reports which of the given ids refer to live tasks.
	// Accepts at most ExistenceBatchLimit ids per call. Calls are read-only
	// and independent of each other, so they are safe to issue concurrently.
	ExistingTaskIDs(ctx context.Context, ids []string) (map[string]bool, error)
}
