package models

import "time"

// RegistrationStatus represents the lifecycle of a registration.
type RegistrationStatus string

// Possible registration statuses.
const (
	RegistrationStatusRegistered RegistrationStatus = "Registered"
	RegistrationStatusInProgress RegistrationStatus = "InProgress"
	RegistrationStatusCompleted  RegistrationStatus = "Completed"
	RegistrationStatusCanceled   RegistrationStatus = "Canceled"
)

// Valid reports whether the status is a known value.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusRegistered, RegistrationStatusInProgress, RegistrationStatusCompleted, RegistrationStatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves the status.
func (s RegistrationStatus) Terminal() bool {
	return s == RegistrationStatusCompleted || s == RegistrationStatusCanceled
}

// FinalScore is the letter grade awarded on completion.
type FinalScore string

// Grade set accepted for completed registrations.
const (
	ScoreA FinalScore = "A"
	ScoreB FinalScore = "B"
	ScoreC FinalScore = "C"
	ScoreD FinalScore = "D"
	ScoreE FinalScore = "E"
)

// Valid reports whether the score belongs to the grade set.
func (s FinalScore) Valid() bool {
	switch s {
	case ScoreA, ScoreB, ScoreC, ScoreD, ScoreE:
		return true
	}
	return false
}

// Registration binds one scholar to one module.
type Registration struct {
	ID         string             `db:"id" json:"id"`
	ModuleID   string             `db:"module_id" json:"module_id"`
	ScholarID  string             `db:"scholar_id" json:"scholar_id"`
	RegDate    time.Time          `db:"reg_date" json:"reg_date"`
	TotalFee   int64              `db:"total_fee" json:"total_fee"`
	Status     RegistrationStatus `db:"status" json:"status"`
	FinalScore *FinalScore        `db:"final_score" json:"final_score,omitempty"`
}

// RegistrationDetail enriches Registration with scholar and module info.
type RegistrationDetail struct {
	Registration
	ScholarCode string `db:"scholar_code" json:"scholar_code"`
	ScholarName string `db:"scholar_name" json:"scholar_name"`
	ModuleCode  string `db:"module_code" json:"module_code"`
	ModuleTitle string `db:"module_title" json:"module_title"`
}

// RegistrationFilter provides filters for listing registrations.
type RegistrationFilter struct {
	ModuleID  string
	ScholarID string
	Status    RegistrationStatus
	Page      int
	PageSize  int
}
