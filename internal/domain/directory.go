package domain

import "time"

// Court is a judicial chamber tickets can be filed against.
type Court struct {
	ID           string
	Name         string
	Jurisdiction string
	Active       bool
	CreatedAt    time.Time
}

// Hardware is a tracked asset identified by its inventory tag.
type Hardware struct {
	ID           string
	InventoryTag string
	SerialNumber string
	Class        string
	CourtID      *string
	Deleted      bool
	CreatedAt    time.Time
}
