package models

import "time"

// ModuleStatus tells whether a module accepts new registrations.
type ModuleStatus string

// Possible module statuses.
const (
	ModuleStatusOpen   ModuleStatus = "Open"
	ModuleStatusClosed ModuleStatus = "Closed"
)

// Valid reports whether the status is a known value.
func (s ModuleStatus) Valid() bool {
	return s == ModuleStatusOpen || s == ModuleStatusClosed
}

// Module is an enrollable project unit with a credit weight and slot capacity.
type Module struct {
	ID        string       `db:"id" json:"id"`
	Code      string       `db:"code" json:"code"`
	Title     string       `db:"title" json:"title"`
	Credits   int          `db:"credits" json:"credits"`
	MaxSlots  int          `db:"max_slots" json:"max_slots"`
	Status    ModuleStatus `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// ModuleOccupancy pairs a module with its current count of Registered registrations.
type ModuleOccupancy struct {
	Module
	Occupied int `db:"occupied" json:"occupied"`
}

// ModuleAvailability is the capacity view of a module exposed to callers.
type ModuleAvailability struct {
	Module    Module `json:"module"`
	Occupied  int    `json:"occupied"`
	Available int    `json:"available"`
	Fee       int64  `json:"fee"`
}

// ModuleFilter scopes module listings.
type ModuleFilter struct {
	Status ModuleStatus
	Search string
}
