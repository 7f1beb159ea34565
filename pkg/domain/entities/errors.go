package entities

import "errors"

var (
	// ErrItemNotFound is returned when an inventory item id resolves to nothing.
	ErrItemNotFound = errors.New("inventory item not found")

	// ErrMaterialNotFound is returned when a material id is not part of a
	// task's requirement list. Callers must not proceed with allocation.
	ErrMaterialNotFound = errors.New("material not found")

	// ErrBatchNotFound is returned when a batch id resolves to nothing.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrTaskNotFound is returned when a task id resolves to nothing.
	ErrTaskNotFound = errors.New("task not found")

	// ErrReservationNotFound is returned when a booking id resolves to nothing.
	ErrReservationNotFound = errors.New("reservation not found")
)
