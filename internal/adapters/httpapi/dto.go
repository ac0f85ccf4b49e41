package httpapi

import (
	"time"

	"github.com/student-enrollment/enrollment-api/internal/app/students"
	"github.com/student-enrollment/enrollment-api/internal/domain"
)

// JSON keys are PascalCase to match the existing frontend. encoding/json matches incoming keys
// case-insensitively, so "name" and "Name" are both accepted.

type studentDTO struct {
	ID        int64     `json:"Id"`
	Name      string    `json:"Name"`
	Email     string    `json:"Email"`
	RA        string    `json:"RA"`
	CPF       string    `json:"CPF"`
	CreatedAt time.Time `json:"CreatedAt"`
	UpdatedAt time.Time `json:"UpdatedAt"`
}

type createStudentRequest struct {
	Name  string `json:"Name"`
	Email string `json:"Email"`
	RA    string `json:"RA"`
	CPF   string `json:"CPF"`
}

type updateStudentRequest struct {
	Name  string `json:"Name"`
	Email string `json:"Email"`
}

type cpfValidityDTO struct {
	CPF   string `json:"CPF"`
	Valid bool   `json:"Valid"`
}

// envelope wraps every successful response that carries data.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok[T any](message string, data T) envelope[T] {
	return envelope[T]{Success: true, Message: message, Data: data}
}

func studentFromDomain(s domain.Student) studentDTO {
	return studentDTO{
		ID:        int64(s.ID),
		Name:      s.Name,
		Email:     s.Email,
		RA:        s.RA,
		CPF:       s.CPF,
		CreatedAt: s.CreatedAt.UTC(),
		UpdatedAt: s.UpdatedAt.UTC(),
	}
}

func (b createStudentRequest) toInput() students.CreateStudentInput {
	return students.CreateStudentInput{Name: b.Name, Email: b.Email, RA: b.RA, CPF: b.CPF}
}

func (b updateStudentRequest) toInput() students.UpdateStudentInput {
	return students.UpdateStudentInput{Name: b.Name, Email: b.Email}
}
