package studentrepo

import (
	"context"
	"database/sql"
	"errors"

	mysql "github.com/student-enrollment/enrollment-api/internal/adapters/mysql"
	"github.com/student-enrollment/enrollment-api/internal/domain"
	"github.com/student-enrollment/enrollment-api/internal/ports/out/studentrepo"
)

const selectColumns = "SELECT id, name, email, ra, cpf, created_at, updated_at FROM students"

var keyErrors = map[string]error{
	"students_ra_unique":    studentrepo.ErrRAAlreadyExists,
	"students_cpf_unique":   studentrepo.ErrCPFAlreadyExists,
	"students_email_unique": studentrepo.ErrEmailAlreadyExists,
}

// Repo is a MySQL implementation of studentrepo.Repository.
// The table collation is case-insensitive, so email lookups and ordering by name need no lower().
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, s studentrepo.Student) (studentrepo.Student, error) {
	if r.db == nil {
		return studentrepo.Student{}, errors.New("nil mysql db")
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO students (name, email, ra, cpf, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		s.Name, s.Email, s.RA, s.CPF, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return studentrepo.Student{}, mapWriteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return studentrepo.Student{}, err
	}
	s.ID = domain.StudentID(id)
	return s, nil
}

func (r *Repo) Update(ctx context.Context, s studentrepo.Student) error {
	if r.db == nil {
		return errors.New("nil mysql db")
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE students SET name = ?, email = ?, updated_at = ? WHERE id = ?",
		s.Name, s.Email, s.UpdatedAt.UTC(), int64(s.ID),
	)
	if err != nil {
		return mapWriteError(err)
	}
	return requireRow(res)
}

func (r *Repo) Delete(ctx context.Context, id domain.StudentID) error {
	if r.db == nil {
		return errors.New("nil mysql db")
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", int64(id))
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *Repo) GetByID(ctx context.Context, id domain.StudentID) (studentrepo.Student, error) {
	return r.getOne(ctx, selectColumns+" WHERE id = ?", int64(id))
}

func (r *Repo) FindByRA(ctx context.Context, ra string) (studentrepo.Student, error) {
	return r.getOne(ctx, selectColumns+" WHERE ra = ?", ra)
}

func (r *Repo) FindByCPF(ctx context.Context, cpf string) (studentrepo.Student, error) {
	return r.getOne(ctx, selectColumns+" WHERE cpf = ?", cpf)
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (studentrepo.Student, error) {
	return r.getOne(ctx, selectColumns+" WHERE email = ?", email)
}

func (r *Repo) List(ctx context.Context) ([]studentrepo.Student, error) {
	if r.db == nil {
		return nil, errors.New("nil mysql db")
	}
	rows, err := r.db.QueryContext(ctx, selectColumns+" ORDER BY name ASC, id ASC")
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

func (r *Repo) getOne(ctx context.Context, query string, arg any) (studentrepo.Student, error) {
	if r.db == nil {
		return studentrepo.Student{}, errors.New("nil mysql db")
	}
	s, err := scanStudent(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return studentrepo.Student{}, studentrepo.ErrNotFound
	}
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (studentrepo.Student, error) {
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

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return studentrepo.ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	if key, ok := mysql.DuplicateKey(err); ok {
		if mapped, known := keyErrors[key]; known {
			return mapped
		}
	}
	return err
}
