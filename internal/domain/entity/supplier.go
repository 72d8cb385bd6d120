package entity

import "time"

// Supplier representa un proveedor. LeadTimeDays son los días entre la orden y la recepción.
type Supplier struct {
	ID           string
	Name         string
	LeadTimeDays int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
