package students

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/student-enrollment/enrollment-api/internal/domain"
	"github.com/student-enrollment/enrollment-api/internal/platform/metrics"
	"github.com/student-enrollment/enrollment-api/internal/platform/validation"
	clockport "github.com/student-enrollment/enrollment-api/internal/ports/out/clock"
	"github.com/student-enrollment/enrollment-api/internal/ports/out/studentrepo"
)

type Service struct {
	repo studentrepo.Repository
	clk  clockport.Clock

	// Logger and Metrics are optional.
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func NewService(repo studentrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo:   repo,
		clk:    clk,
		Logger: slog.Default(),
	}
}

func (s *Service) ListStudents(ctx context.Context) ([]domain.Student, error) {
	ss, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	out := make([]domain.Student, 0, len(ss))
	for _, st := range ss {
		out = append(out, toDomain(st))
	}
	return out, nil
}

func (s *Service) GetStudent(ctx context.Context, id domain.StudentID) (domain.Student, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, studentrepo.ErrNotFound) {
			return domain.Student{}, notFound()
		}
		return domain.Student{}, fmt.Errorf("get student %d: %w", id, err)
	}
	return toDomain(st), nil
}

func (s *Service) CreateStudent(ctx context.Context, in CreateStudentInput) (domain.Student, error) {
	in.Name = domain.NormalizeHumanName(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	in.RA = strings.TrimSpace(in.RA)
	in.CPF = strings.TrimSpace(in.CPF)

	if err := s.validate(in); err != nil {
		var ae *Error
		if errors.As(err, &ae) && ae.Details["CPF"] != nil {
			s.Metrics.IncCPFRejected()
		}
		return domain.Student{}, err
	}

	// Checked in this order so the reported conflict is deterministic.
	if err := s.ensureUnique(ctx, s.repo.FindByRA, in.RA, 0, raInUse); err != nil {
		return domain.Student{}, err
	}
	if err := s.ensureUnique(ctx, s.repo.FindByCPF, in.CPF, 0, cpfInUse); err != nil {
		return domain.Student{}, err
	}
	if err := s.ensureUnique(ctx, s.repo.FindByEmail, in.Email, 0, emailInUse); err != nil {
		return domain.Student{}, err
	}

	now := s.clk.Now()
	created, err := s.repo.Create(ctx, studentrepo.Student{
		Name:      in.Name,
		Email:     in.Email,
		RA:        in.RA,
		CPF:       in.CPF,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		// Lost a race with a concurrent create; the store's unique indexes win.
		if ae := conflictFromRepo(err); ae != nil {
			return domain.Student{}, ae
		}
		return domain.Student{}, fmt.Errorf("create student: %w", err)
	}

	s.Metrics.IncStudentCreated()
	s.log().InfoContext(ctx, "student created", "student_id", int64(created.ID), "ra", created.RA)
	return toDomain(created), nil
}

func (s *Service) UpdateStudent(ctx context.Context, id domain.StudentID, in UpdateStudentInput) (domain.Student, error) {
	in.Name = domain.NormalizeHumanName(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)

	if err := s.validate(in); err != nil {
		return domain.Student{}, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, studentrepo.ErrNotFound) {
			return domain.Student{}, notFound()
		}
		return domain.Student{}, fmt.Errorf("get student %d: %w", id, err)
	}

	if err := s.ensureUnique(ctx, s.repo.FindByEmail, in.Email, id, emailInUse); err != nil {
		return domain.Student{}, err
	}

	existing.Name = in.Name
	existing.Email = in.Email
	existing.UpdatedAt = s.clk.Now()
	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, studentrepo.ErrNotFound) {
			return domain.Student{}, notFound()
		}
		if ae := conflictFromRepo(err); ae != nil {
			return domain.Student{}, ae
		}
		return domain.Student{}, fmt.Errorf("update student %d: %w", id, err)
	}

	s.log().InfoContext(ctx, "student updated", "student_id", int64(id))
	return toDomain(existing), nil
}

func (s *Service) DeleteStudent(ctx context.Context, id domain.StudentID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, studentrepo.ErrNotFound) {
			return notFound()
		}
		return fmt.Errorf("delete student %d: %w", id, err)
	}
	s.Metrics.IncStudentDeleted()
	s.log().InfoContext(ctx, "student deleted", "student_id", int64(id))
	return nil
}

func (s *Service) validate(in any) error {
	err := validation.Struct(in)
	if err == nil {
		return nil
	}
	var fe validation.FieldErrors
	if !errors.As(err, &fe) {
		return fmt.Errorf("validate input: %w", err)
	}
	details := make(map[string]any, len(fe))
	for k, v := range fe {
		details[k] = v
	}
	return &Error{
		Status:  400,
		Code:    CodeValidation,
		Message: "invalid student data",
		Details: details,
	}
}

// ensureUnique fails with conflict() when value is held by a student other than self.
func (s *Service) ensureUnique(
	ctx context.Context,
	find func(context.Context, string) (studentrepo.Student, error),
	value string,
	self domain.StudentID,
	conflict func() *Error,
) error {
	st, err := find(ctx, value)
	if err != nil {
		if errors.Is(err, studentrepo.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("uniqueness lookup: %w", err)
	}
	if self != 0 && st.ID == self {
		return nil
	}
	return conflict()
}

func (s *Service) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func conflictFromRepo(err error) *Error {
	switch {
	case errors.Is(err, studentrepo.ErrRAAlreadyExists):
		return raInUse()
	case errors.Is(err, studentrepo.ErrCPFAlreadyExists):
		return cpfInUse()
	case errors.Is(err, studentrepo.ErrEmailAlreadyExists):
		return emailInUse()
	default:
		return nil
	}
}

func toDomain(s studentrepo.Student) domain.Student {
	return domain.Student{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		RA:        s.RA,
		CPF:       s.CPF,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
