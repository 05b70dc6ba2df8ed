package entity

import (
	"time"
)

// Product is a catalog entry. AssignedTo lists the user ids allowed
// non-admin visibility of the record.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Logo        string    `json:"logo"`
	Source      Source    `json:"source"`
	AssignedTo  []string  `json:"assignedTo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
