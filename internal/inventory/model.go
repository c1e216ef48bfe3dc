package inventory

import "errors"

// Item is a stocked material (herbs plus consumables such as needles).
type Item struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurrentStock int    `json:"currentStock"`
	TargetStock  int    `json:"targetStock"`
	Unit         string `json:"unit"`
}

var (
	// ErrItemNotFound is returned when no stocked item carries the name.
	ErrItemNotFound = errors.New("inventory item not found")

	// ErrInvalidItem is returned when an item is missing its name.
	ErrInvalidItem = errors.New("inventory item name is required")
)
