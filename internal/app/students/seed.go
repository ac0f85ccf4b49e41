package students

import (
	"context"
	"fmt"
)

// SampleStudents are created by SeedStudents. Their CPFs satisfy the checksum.
var SampleStudents = []CreateStudentInput{
	{Name: "João Silva", Email: "joao.silva@email.com", RA: "RA001", CPF: "12345678909"},
	{Name: "Maria Santos", Email: "maria.santos@email.com", RA: "RA002", CPF: "98765432100"},
	{Name: "Pedro Oliveira", Email: "pedro.oliveira@email.com", RA: "RA003", CPF: "11144477735"},
}

// SeedStudents populates an empty store with SampleStudents and reports how many were created.
// A store that already holds students is left untouched.
func (s *Service) SeedStudents(ctx context.Context) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, in := range SampleStudents {
		if _, err := s.CreateStudent(ctx, in); err != nil {
			return i, fmt.Errorf("seed %s: %w", in.RA, err)
		}
	}
	return len(SampleStudents), nil
}
