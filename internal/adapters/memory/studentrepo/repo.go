package studentrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/student-enrollment/enrollment-api/internal/domain"
	"github.com/student-enrollment/enrollment-api/internal/ports/out/studentrepo"
)

// Repo is an in-memory implementation of studentrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	nextID domain.StudentID
	byID   map[domain.StudentID]studentrepo.Student

	// Secondary unique indexes. Email keys are lower-cased.
	idByRA    map[string]domain.StudentID
	idByCPF   map[string]domain.StudentID
	idByEmail map[string]domain.StudentID
}

func NewRepo() *Repo {
	return &Repo{
		nextID:    1,
		byID:      make(map[domain.StudentID]studentrepo.Student),
		idByRA:    make(map[string]domain.StudentID),
		idByCPF:   make(map[string]domain.StudentID),
		idByEmail: make(map[string]domain.StudentID),
	}
}

func (r *Repo) Create(ctx context.Context, s studentrepo.Student) (studentrepo.Student, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.idByRA[s.RA]; ok {
		return studentrepo.Student{}, studentrepo.ErrRAAlreadyExists
	}
	if _, ok := r.idByCPF[s.CPF]; ok {
		return studentrepo.Student{}, studentrepo.ErrCPFAlreadyExists
	}
	if _, ok := r.idByEmail[emailKey(s.Email)]; ok {
		return studentrepo.Student{}, studentrepo.ErrEmailAlreadyExists
	}

	s.ID = r.nextID
	r.nextID++

	r.byID[s.ID] = s
	r.idByRA[s.RA] = s.ID
	r.idByCPF[s.CPF] = s.ID
	r.idByEmail[emailKey(s.Email)] = s.ID
	return s, nil
}

func (r *Repo) Update(ctx context.Context, s studentrepo.Student) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[s.ID]
	if !ok {
		return studentrepo.ErrNotFound
	}
	newKey := emailKey(s.Email)
	if owner, ok := r.idByEmail[newKey]; ok && owner != s.ID {
		return studentrepo.ErrEmailAlreadyExists
	}

	delete(r.idByEmail, emailKey(existing.Email))
	r.idByEmail[newKey] = s.ID

	existing.Name = s.Name
	existing.Email = s.Email
	existing.UpdatedAt = s.UpdatedAt
	r.byID[s.ID] = existing
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.StudentID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[id]
	if !ok {
		return studentrepo.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.idByRA, existing.RA)
	delete(r.idByCPF, existing.CPF)
	delete(r.idByEmail, emailKey(existing.Email))
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.StudentID) (studentrepo.Student, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return studentrepo.Student{}, studentrepo.ErrNotFound
	}
	return s, nil
}

func (r *Repo) List(ctx context.Context) ([]studentrepo.Student, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]studentrepo.Student, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sortStudentsByName(out)
	return out, nil
}

func (r *Repo) FindByRA(ctx context.Context, ra string) (studentrepo.Student, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.idByRA, ra)
}

func (r *Repo) FindByCPF(ctx context.Context, cpf string) (studentrepo.Student, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.idByCPF, cpf)
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (studentrepo.Student, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.idByEmail, emailKey(email))
}

// lookup must be called with r.mu held.
func (r *Repo) lookup(index map[string]domain.StudentID, key string) (studentrepo.Student, error) {
	id, ok := index[key]
	if !ok {
		return studentrepo.Student{}, studentrepo.ErrNotFound
	}
	s, ok := r.byID[id]
	if !ok {
		return studentrepo.Student{}, studentrepo.ErrNotFound
	}
	return s, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sortStudentsByName(ss []studentrepo.Student) {
	sort.Slice(ss, func(i, j int) bool {
		ni := strings.ToLower(ss[i].Name)
		nj := strings.ToLower(ss[j].Name)
		if ni == nj {
			return ss[i].ID < ss[j].ID
		}
		return ni < nj
	})
}
