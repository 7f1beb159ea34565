package maintenance

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aereven/stockbook/pkg/domain/entities"
	"github.com/aereven/stockbook/pkg/domain/repositories"
)

// DefaultMicroReservationEpsilon is the quantity below which a reservation is
// considered rounding residue from many partial consumption events.
const DefaultMicroReservationEpsilon = 1e-6

// Cleaner removes reservations that no longer serve anyone: bookings owned by
// deleted tasks and residual near-zero holds. Both jobs mutate the store, so
// they are meant for opportunistic maintenance runs, not read paths.
type Cleaner struct {
	log     repositories.TransactionLog
	tasks   repositories.TaskRepository
	logger  *zap.Logger
	epsilon float64
}

// NewCleaner creates a cleaner. logger may be nil; epsilon <= 0 falls back to
// DefaultMicroReservationEpsilon.
func NewCleaner(log repositories.TransactionLog, tasks repositories.TaskRepository, logger *zap.Logger, epsilon float64) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if epsilon <= 0 {
		epsilon = DefaultMicroReservationEpsilon
	}
	return &Cleaner{log: log, tasks: tasks, logger: logger, epsilon: epsilon}
}

// CleanupDeletedTaskReservations deletes bookings whose referenced task no
// longer exists and returns how many were removed. Task existence is checked
// in chunks of at most repositories.ExistenceBatchLimit ids; the checks are
// read-only and independent, so the chunks are issued concurrently. Running
// the job twice in a row is a no-op the second time.
func (c *Cleaner) CleanupDeletedTaskReservations(ctx context.Context) (int, error) {
	bookings, err := c.log.ListBookings(ctx, repositories.BookingFilter{})
	if err != nil {
		return 0, fmt.Errorf("list bookings: %w", err)
	}

	seen := make(map[string]struct{})
	var refIDs []string
	for _, b := range bookings {
		if b.ReferenceID == "" {
			continue
		}
		if _, ok := seen[b.ReferenceID]; ok {
			continue
		}
		seen[b.ReferenceID] = struct{}{}
		refIDs = append(refIDs, b.ReferenceID)
	}
	if len(refIDs) == 0 {
		return 0, nil
	}

	exists, err := c.checkExistence(ctx, refIDs)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, b := range bookings {
		if b.ReferenceID == "" || exists[b.ReferenceID] {
			continue
		}
		if err := c.log.DeleteBooking(ctx, b.ID); err != nil {
			return deleted, fmt.Errorf("delete booking %s: %w", b.ID, err)
		}
		deleted++
	}

	if deleted > 0 {
		c.logger.Info("removed orphaned task reservations", zap.Int("deleted", deleted))
	}
	return deleted, nil
}

// checkExistence fans the id set out over concurrent chunked existence
// queries and merges the answers.
func (c *Cleaner) checkExistence(ctx context.Context, ids []string) (map[string]bool, error) {
	exists := make(map[string]bool, len(ids))
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)

	for start := 0; start < len(ids); start += repositories.ExistenceBatchLimit {
		end := start + repositories.ExistenceBatchLimit
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := c.tasks.ExistingTaskIDs(ctx, chunk)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for id, ok := range found {
				exists[id] = ok
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("check task existence: %w", firstErr)
	}
	return exists, nil
}

// CleanupMicroReservations deletes reservations whose quantity has dwindled
// below epsilon and returns how many were removed.
func (c *Cleaner) CleanupMicroReservations(ctx context.Context) (int, error) {
	bookings, err := c.log.ListBookings(ctx, repositories.BookingFilter{})
	if err != nil {
		return 0, fmt.Errorf("list bookings: %w", err)
	}

	deleted := 0
	for _, b := range bookings {
		if !isMicro(b, c.epsilon) {
			continue
		}
		if err := c.log.DeleteBooking(ctx, b.ID); err != nil {
			return deleted, fmt.Errorf("delete booking %s: %w", b.ID, err)
		}
		deleted++
	}

	if deleted > 0 {
		c.logger.Info("removed micro reservations", zap.Int("deleted", deleted))
	}
	return deleted, nil
}

func isMicro(b *entities.Reservation, epsilon float64) bool {
	return b.Quantity < epsilon
}
