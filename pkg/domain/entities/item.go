package entities

import "fmt"

// Quantity values throughout the core are float64: stock is tracked in
// fractional units (kg, liters, meters) and partial consumption accumulates
// rounding residue that the maintenance jobs exist to clean up.

// InventoryItem represents one material in the catalog. Quantity is a derived
// aggregate: it should equal the sum of the item's batch quantities, but that
// equality is eventually consistent, not transactional. The quantity
// recalculator repairs drift between the two.
type InventoryItem struct {
	ID             string
	Name           string
	Unit           string
	Quantity       float64
	BookedQuantity float64
	MinStockLevel  float64
	MaxStockLevel  float64
	Archived       bool
}

// NewInventoryItem creates a validated InventoryItem.
func NewInventoryItem(id, name, unit string, quantity float64) (*InventoryItem, error) {
	if id == "" {
		return nil, fmt.Errorf("item id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("item name cannot be empty")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("item quantity cannot be negative, got %v", quantity)
	}

	return &InventoryItem{
		ID:       id,
		Name:     name,
		Unit:     unit,
		Quantity: quantity,
	}, nil
}

// BelowMinStock reports whether the aggregate on-hand quantity has fallen
// under the configured minimum level. A zero MinStockLevel disables the check.
func (i *InventoryItem) BelowMinStock() bool {
	return i.MinStockLevel > 0 && i.Quantity < i.MinStockLevel
}

// AvailableQuantity returns on-hand minus booked, floored at zero.
func (i *InventoryItem) AvailableQuantity() float64 {
	avail := i.Quantity - i.BookedQuantity
	if avail < 0 {
		return 0
	}
	return avail
}
