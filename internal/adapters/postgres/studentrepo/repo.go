package studentrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/student-enrollment/enrollment-api/internal/adapters/postgres"
	"github.com/student-enrollment/enrollment-api/internal/domain"
	"github.com/student-enrollment/enrollment-api/internal/ports/out/studentrepo"
)

const table = "students"

var (
	dialect = goqu.Dialect("postgres")

	columns = []any{"id", "name", "email", "ra", "cpf", "created_at", "updated_at"}

	// Unique constraint / index names from the schema.
	constraintErrors = map[string]error{
		"students_ra_unique":    studentrepo.ErrRAAlreadyExists,
		"students_cpf_unique":   studentrepo.ErrCPFAlreadyExists,
		"students_email_unique": studentrepo.ErrEmailAlreadyExists,
	}
)

// Repo is a Postgres implementation of studentrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, s studentrepo.Student) (studentrepo.Student, error) {
	if r.pool == nil {
		return studentrepo.Student{}, errors.New("nil postgres pool")
	}
	query, args, err := dialect.Insert(table).
		Rows(goqu.Record{
			"name":       s.Name,
			"email":      s.Email,
			"ra":         s.RA,
			"cpf":        s.CPF,
			"created_at": s.CreatedAt.UTC(),
			"updated_at": s.UpdatedAt.UTC(),
		}).
		Returning("id").
		Prepared(true).
		ToSQL()
	if err != nil {
		return studentrepo.Student{}, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return studentrepo.Student{}, mapWriteError(err)
	}
	s.ID = domain.StudentID(id)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func (r *Repo) Update(ctx context.Context, s studentrepo.Student) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	query, args, err := dialect.Update(table).
		Set(goqu.Record{
			"name":       s.Name,
			"email":      s.Email,
			"updated_at": s.UpdatedAt.UTC(),
		}).
		Where(goqu.C("id").Eq(int64(s.ID))).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError(err)
	}
	if ct.RowsAffected() == 0 {
		return studentrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.StudentID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	query, args, err := dialect.Delete(table).
		Where(goqu.C("id").Eq(int64(id))).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return studentrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.StudentID) (studentrepo.Student, error) {
	return r.getOne(ctx, goqu.C("id").Eq(int64(id)))
}

func (r *Repo) FindByRA(ctx context.Context, ra string) (studentrepo.Student, error) {
	return r.getOne(ctx, goqu.C("ra").Eq(ra))
}

func (r *Repo) FindByCPF(ctx context.Context, cpf string) (studentrepo.Student, error) {
	return r.getOne(ctx, goqu.C("cpf").Eq(cpf))
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (studentrepo.Student, error) {
	return r.getOne(ctx, goqu.Func("lower", goqu.C("email")).Eq(strings.ToLower(email)))
}

func (r *Repo) List(ctx context.Context) ([]studentrepo.Student, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	query, args, err := dialect.From(table).
		Select(columns...).
		Order(goqu.Func("lower", goqu.C("name")).Asc(), goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []studentrepo.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) getOne(ctx context.Context, where goqu.Expression) (studentrepo.Student, error) {
	if r.pool == nil {
		return studentrepo.Student{}, errors.New("nil postgres pool")
	}
	query, args, err := dialect.From(table).
		Select(columns...).
		Where(where).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return studentrepo.Student{}, fmt.Errorf("build select: %w", err)
	}

	s, err := scanStudent(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return studentrepo.Student{}, studentrepo.ErrNotFound
		}
		return studentrepo.Student{}, err
	}
	return s, nil
}

func scanStudent(row pgx.Row) (studentrepo.Student, error) {
	var (
		s  studentrepo.Student
		id int64
	)
	if err := row.Scan(&id, &s.Name, &s.Email, &s.RA, &s.CPF, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return studentrepo.Student{}, err
	}
	s.ID = domain.StudentID(id)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func mapWriteError(err error) error {
	if name, ok := postgres.UniqueViolation(err); ok {
		if mapped, known := constraintErrors[name]; known {
			return mapped
		}
	}
	return err
}
