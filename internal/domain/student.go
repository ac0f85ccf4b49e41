package domain

import "time"

// Student is the domain representation of an enrolled student.
type Student struct {
	ID StudentID

	Name  string
	Email string
	// RA is the institution-issued registration number. Immutable after creation.
	RA string
	// CPF is the national identifier as 11 raw digits. Immutable after creation.
	CPF string

	CreatedAt time.Time
	UpdatedAt time.Time
}
