package studentrepo

import (
	"context"
	"time"

	"github.com/student-enrollment/enrollment-api/internal/domain"
)

// Student is the persistence shape used by the student repository.
// It is an internal record, not an HTTP DTO.
type Student struct {
	ID    domain.StudentID
	Name  string
	Email string
	RA    string
	CPF   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted students.
//
// Uniqueness: RA, CPF and Email (case-insensitive) are unique across students. Create and Update
// report violations with ErrRAAlreadyExists, ErrCPFAlreadyExists or ErrEmailAlreadyExists.
//
// Result ordering expectations:
// - List returns students ordered by Name ascending (case-insensitive), ties broken by ID.
type Repository interface {
	// Create assigns the ID and returns the stored record. Any ID on the input is ignored.
	Create(ctx context.Context, s Student) (Student, error)
	// Update overwrites Name, Email and UpdatedAt. RA, CPF and CreatedAt are never changed.
	Update(ctx context.Context, s Student) error
	Delete(ctx context.Context, id domain.StudentID) error

	GetByID(ctx context.Context, id domain.StudentID) (Student, error)
	List(ctx context.Context) ([]Student, error)

	FindByRA(ctx context.Context, ra string) (Student, error)
	FindByCPF(ctx context.Context, cpf string) (Student, error)
	FindByEmail(ctx context.Context, email string) (Student, error)
}
