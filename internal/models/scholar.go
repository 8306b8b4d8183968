package models

import "time"

// Scholar is a student identified by a unique external scholar code.
type Scholar struct {
	ID           string    `db:"id" json:"id"`
	ScholarCode  string    `db:"scholar_code" json:"scholar_code"`
	Name         string    `db:"name" json:"name"`
	ContactEmail string    `db:"contact_email" json:"contact_email"`
	Program      string    `db:"program" json:"program"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
