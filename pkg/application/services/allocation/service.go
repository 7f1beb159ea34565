package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aereven/stockbook/pkg/application/services/requirement"
	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
	"github.com/aereven/stockbook/pkg/infrastructure/locking"
)

// Service wires the requirement resolver and the FEFO selector to the
// backing stores. All reservation mutation for one item id runs under a
// per-item lock, so two concurrent edits can never oversubscribe a batch.
type Service struct {
	tasks   repositories.TaskRepository
	batches repositories.BatchRepository
	log     repositories.TransactionLog
	locks   *locking.KeyedMutex
	now     func() time.Time
	newID   func() string
}

// NewService creates an allocation service over the given stores.
func NewService(tasks repositories.TaskRepository, batches repositories.BatchRepository, log repositories.TransactionLog) *Service {
	return &Service{
		tasks:   tasks,
		batches: batches,
		log:     log,
		locks:   locking.NewKeyedMutex(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// CandidateSet is everything the picker (manual or automatic) needs for one
// material on one task: the still-required quantity, the ranked candidate
// lots, and the task's current per-batch holds.
type CandidateSet struct {
	Required        float64
	Candidates      []CandidateBatch
	ReservedForTask map[string]float64
}

// LoadCandidates assembles the candidate set for a task's material. Reserved-
// by-others sums come from the transaction log, excluding the current task's
// own bookings so an existing allocation does not count against itself.
func (s *Service) LoadCandidates(ctx context.Context, taskID, materialID string) (*CandidateSet, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", taskID, err)
	}

	required, err := requirement.RequiredForTask(task, materialID)
	if err != nil {
		return nil, err
	}

	lots, err := s.batches.ListBatchesByItem(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("load batches for %s: %w", materialID, err)
	}

	bookings, err := s.log.ListBookings(ctx, repositories.BookingFilter{ItemID: materialID})
	if err != nil {
		return nil, fmt.Errorf("load bookings for %s: %w", materialID, err)
	}

	byOthers := make(map[string]float64)
	for _, b := range bookings {
		if b.ReferenceID == taskID || b.BatchID == "" || b.Fulfilled {
			continue
		}
		byOthers[b.BatchID] += b.Quantity
	}

	reservedForTask := task.ReservedBatches(materialID)
	if reservedForTask == nil {
		reservedForTask = map[string]float64{}
	}

	candidates := make([]CandidateBatch, 0, len(lots))
	for _, lot := range lots {
		candidates = append(candidates, CandidateBatch{
			ID:               lot.ID,
			Quantity:         lot.Quantity,
			ReservedByOthers: byOthers[lot.ID],
			ExpiryDate:       lot.ExpiryDate,
		})
	}

	return &CandidateSet{
		Required:        required,
		Candidates:      Rank(candidates, reservedForTask),
		ReservedForTask: reservedForTask,
	}, nil
}

// ReserveManual replaces the task's holds on a material with an operator-made
// selection. The selection is validated against effective quantities before
// any store mutation; the returned preview reports genuine shortfall.
func (s *Service) ReserveManual(ctx context.Context, taskID, materialID string, selected Selection) (*Preview, error) {
	s.locks.Lock(materialID)
	defer s.locks.Unlock(materialID)

	set, err := s.LoadCandidates(ctx, taskID, materialID)
	if err != nil {
		return nil, err
	}
	if err := ValidateSelection(selected, set.Candidates); err != nil {
		return nil, err
	}

	if err := s.replaceBookings(ctx, taskID, materialID, selected); err != nil {
		return nil, err
	}

	preview := PreviewSelection(selected, set.Required)
	return &preview, nil
}

// ReserveAuto allocates the still-required quantity greedily along the FEFO
// order and writes the resulting holds. A non-zero RemainingDemand in the
// result means stock could not fully cover the requirement.
func (s *Service) ReserveAuto(ctx context.Context, taskID, materialID string) (*AutoResult, error) {
	s.locks.Lock(materialID)
	defer s.locks.Unlock(materialID)

	set, err := s.LoadCandidates(ctx, taskID, materialID)
	if err != nil {
		return nil, err
	}

	result := AutoAllocate(set.Required, set.Candidates)

	selected := make(Selection, len(result.Allocations))
	for _, a := range result.Allocations {
		selected[a.BatchID] = a.Quantity
	}
	if err := s.replaceBookings(ctx, taskID, materialID, selected); err != nil {
		return nil, err
	}

	return result, nil
}

// ReleaseForTask removes the task's holds on one material.
func (s *Service) ReleaseForTask(ctx context.Context, taskID, materialID string) error {
	s.locks.Lock(materialID)
	defer s.locks.Unlock(materialID)
	return s.replaceBookings(ctx, taskID, materialID, nil)
}

// replaceBookings swaps the task's bookings on an item for the given
// selection. Must be called with the item lock held.
func (s *Service) replaceBookings(ctx context.Context, taskID, materialID string, selected Selection) error {
	existing, err := s.log.ListBookings(ctx, repositories.BookingFilter{
		ItemID:      materialID,
		ReferenceID: taskID,
	})
	if err != nil {
		return fmt.Errorf("load existing bookings: %w", err)
	}
	for _, b := range existing {
		if err := s.log.DeleteBooking(ctx, b.ID); err != nil {
			return fmt.Errorf("delete booking %s: %w", b.ID, err)
		}
	}

	for batchID, qty := range selected {
		if qty <= 0 {
			continue
		}
		booking, err := entities.NewReservation(s.newID(), materialID, batchID, qty, taskID, s.now())
		if err != nil {
			return err
		}
		if err := s.log.AppendBooking(ctx, booking); err != nil {
			return fmt.Errorf("append booking for batch %s: %w", batchID, err)
		}
	}
	return nil
}
