package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
)

// TaskRepositoryFS implements the read-only repositories.TaskRepository view
// over the task documents the owning application maintains.
type TaskRepositoryFS struct {
	Client *firestore.Client
}

func NewTaskRepositoryFS(client *firestore.Client) *TaskRepositoryFS {
	return &TaskRepositoryFS{Client: client}
}

func (r *TaskRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(tasksCollection)
}

// Compile-time check
var _ repositories.TaskRepository = (*TaskRepositoryFS)(nil)

type requirementDoc struct {
	ID         string  `firestore:"id"`
	MaterialID string  `firestore:"materialId"`
	Quantity   float64 `firestore:"quantity"`
}

type consumedDoc struct {
	MaterialID string  `firestore:"materialId"`
	BatchID    string  `firestore:"batchId"`
	Quantity   float64 `firestore:"quantity"`
}

type taskDoc struct {
	Number                       string                        `firestore:"number"`
	Status                       string                        `firestore:"status"`
	Requirements                 []requirementDoc              `firestore:"materialRequirements"`
	ActualMaterialUsage          map[string]float64            `firestore:"actualMaterialUsage"`
	ConsumedMaterials            []consumedDoc                 `firestore:"consumedMaterials"`
	MaterialBatches              map[string]map[string]float64 `firestore:"materialBatches"`
	MaterialConsumptionConfirmed bool                          `firestore:"materialConsumptionConfirmed"`
}

func taskStatusFromString(s string) entities.TaskStatus {
	switch s {
	case "completed":
		return entities.TaskCompleted
	case "in_progress":
		return entities.TaskInProgress
	case "cancelled":
		return entities.TaskCancelled
	default:
		return entities.TaskPlanned
	}
}

func (d taskDoc) toDomain(id string) *entities.Task {
	task := &entities.Task{
		ID:                           id,
		Number:                       d.Number,
		Status:                       taskStatusFromString(d.Status),
		ActualMaterialUsage:          d.ActualMaterialUsage,
		MaterialBatches:              d.MaterialBatches,
		MaterialConsumptionConfirmed: d.MaterialConsumptionConfirmed,
	}
	for _, rd := range d.Requirements {
		task.Requirements = append(task.Requirements, entities.MaterialRequirement{
			ID:         rd.ID,
			MaterialID: rd.MaterialID,
			Quantity:   rd.Quantity,
		})
	}
	for _, cd := range d.ConsumedMaterials {
		task.ConsumedMaterials = append(task.ConsumedMaterials, entities.ConsumedMaterial{
			MaterialID: cd.MaterialID,
			BatchID:    cd.BatchID,
			Quantity:   cd.Quantity,
		})
	}
	return task
}

func (r *TaskRepositoryFS) GetTask(ctx context.Context, id string) (*entities.Task, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", entities.ErrTaskNotFound, id)
		}
		return nil, err
	}

	var d taskDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return d.toDomain(snap.Ref.ID), nil
}

// ExistingTaskIDs resolves one chunk of ids with a single "in" query against
// the document ids. The backend caps "in" disjunctions, hence the batch limit.
func (r *TaskRepositoryFS) ExistingTaskIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}
	if len(ids) > repositories.ExistenceBatchLimit {
		return nil, fmt.Errorf("existence query limited to %d ids, got %d", repositories.ExistenceBatchLimit, len(ids))
	}

	exists := make(map[string]bool, len(ids))
	for _, id := range ids {
		exists[id] = false
	}
	if len(ids) == 0 {
		return exists, nil
	}

	it := r.col().Where(firestore.DocumentID, "in", ids).Documents(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		exists[snap.Ref.ID] = true
	}
	return exists, nil
}
