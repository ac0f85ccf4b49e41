package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	idempotencyport "github.com/student-enrollment/enrollment-api/internal/ports/out/idempotency"
	studentrepoport "github.com/student-enrollment/enrollment-api/internal/ports/out/studentrepo"
)

type CleanupFunc = func()

// StudentRepoFactory returns an empty repository. Each call must yield an isolated store.
type StudentRepoFactory func(t *testing.T) (studentrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1-abcdef",
		Method:   "POST",
		Route:    "/api/students",
		BodyHash: "",
	}

	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get(missing) ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// A different body hash is a different fingerprint.
	respFP := fp
	respFP.BodyHash = "hash-def"
	if _, ok, err := store.Get(ctx, respFP); err != nil || ok {
		t.Fatalf("Get(other body hash) ok=%v err=%v, want ok=false", ok, err)
	}
	if err := store.Put(ctx, respFP, idempotencyport.Record{StatusCode: 201, ContentType: "application/json", Body: []byte(`{"success":true}`)}); err != nil {
		t.Fatalf("Put response: %v", err)
	}
	got, ok, err = store.Get(ctx, respFP)
	if err != nil || !ok || got.StatusCode != 201 {
		t.Fatalf("Get(response) ok=%v err=%v rec=%+v", ok, err, got)
	}
}

func RunStudentRepo(t *testing.T, newRepo StudentRepoFactory) {
	t.Helper()

	fresh := func(t *testing.T) studentrepoport.Repository {
		t.Helper()
		repo, cleanup := newRepo(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		return repo
	}
	now := time.Unix(1700000000, 0).UTC()

	t.Run("CreateAssignsIDsAndGet", func(t *testing.T) {
		ctx := context.Background()
		repo := fresh(t)

		a, err := repo.Create(ctx, student("Ana", "ana@example.com", "RA001", "11144477735", now))
		if err != nil {
			t.Fatalf("Create(a) err=%v", err)
		}
		b, err := repo.Create(ctx, student("Bruno", "bruno@example.com", "RA002", "52998224725", now))
		if err != nil {
			t.Fatalf("Create(b) err=%v", err)
		}
		if a.ID <= 0 || b.ID <= a.ID {
			t.Fatalf("ids a=%d b=%d, want positive and increasing", a.ID, b.ID)
		}

		got, err := repo.GetByID(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetByID err=%v", err)
		}
		if got.Name != "Ana" || got.Email != "ana@example.com" || got.RA != "RA001" || got.CPF != "11144477735" {
			t.Fatalf("GetByID()=%+v", got)
		}
		if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
			t.Fatalf("timestamps created=%v updated=%v, want %v", got.CreatedAt, got.UpdatedAt, now)
		}
	})

	t.Run("GetByIDMissing", func(t *testing.T) {
		repo := fresh(t)
		if _, err := repo.GetByID(context.Background(), 999999); !errors.Is(err, studentrepoport.ErrNotFound) {
			t.Fatalf("GetByID(missing) err=%v, want ErrNotFound", err)
		}
	})

	t.Run("CreateRejectsDuplicates", func(t *testing.T) {
		ctx := context.Background()
		repo := fresh(t)

		if _, err := repo.Create(ctx, student("Ana", "ana@example.com", "RA001", "11144477735", now)); err != nil {
			t.Fatalf("Create err=%v", err)
		}
		_, err := repo.Create(ctx, student("X", "x@example.com", "RA001", "52998224725", now))
		if !errors.Is(err, studentrepoport.ErrRAAlreadyExists) {
			t.Fatalf("dup RA err=%v, want ErrRAAlreadyExists", err)
		}
		_, err = repo.Create(ctx, student("X", "x@example.com", "RA009", "11144477735", now))
		if !errors.Is(err, studentrepoport.ErrCPFAlreadyExists) {
			t.Fatalf("dup CPF err=%v, want ErrCPFAlreadyExists", err)
		}
		_, err = repo.Create(ctx, student("X", "ANA@example.com", "RA009", "52998224725", now))
		if !errors.Is(err, studentrepoport.ErrEmailAlreadyExists) {
			t.Fatalf("dup email err=%v, want ErrEmailAlreadyExists", err)
		}

		all, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List err=%v", err)
		}
		if len(all) != 1 {
			t.Fatalf("List() len=%d after rejected creates, want 1", len(all))
		}
	})

	t.Run("UpdateChangesNameAndEmailOnly", func(t *testing.T) {
		ctx := context.Background()
		repo := fresh(t)

		s, err := repo.Create(ctx, student("Ana", "ana@example.com", "RA001", "11144477735", now))
		if err != nil {
			t.Fatalf("Create err=%v", err)
		}
		later := now.Add(time.Hour)
		upd := s
		upd.Name = "Ana Paula"
		upd.Email = "ana.paula@example.com"
		upd.RA = "RA999"
		upd.CPF = "52998224725"
		upd.UpdatedAt = later
		if err := repo.Update(ctx, upd); err != nil {
			t.Fatalf("Update err=%v", err)
		}

		got, err := repo.GetByID(ctx, s.ID)
		if err != nil {
			t.Fatalf("GetByID err=%v", err)
		}
		if got.Name != "Ana Paula" || got.Email != "ana.paula@example.com" {
			t.Fatalf("after update=%+v", got)
		}
		if got.RA != "RA001" || got.CPF != "11144477735" {
			t.Fatalf("immutable fields changed: ra=%q cpf=%q", got.RA, got.CPF)
		}
		if !got.UpdatedAt.Equal(later) || !got.CreatedAt.Equal(now) {
			t.Fatalf("timestamps created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
		}

		// Old email is released.
		if _, err := repo.FindByEmail(ctx, "ana@example.com"); !errors.Is(err, studentrepoport.ErrNotFound) {
			t.Fatalf("FindByEmail(old) err=%v, want ErrNotFound", err)
		}
	})

	t.Run("UpdateRejectsMissingAndEmailConflict", func(t *testing.T) {
		ctx := context.Background()
		repo := fresh(t)

		if err := repo.Update(ctx, studentrepoport.Student{ID: 424242, Name: "N", Email: "n@example.com"}); !errors.Is(err, studentrepoport.ErrNotFound) {
			t.Fatalf("Update(missing) err=%v, want ErrNotFound", err)
		}

		a, _ := repo.Create(ctx, student("Ana", "ana@example.com", "RA001", "11144477735", now))
		b, _ := repo.Create(ctx, student("Bruno", "bruno@example.com", "RA002", "52998224725", now))

		b.Email = "Ana@Example.com"
		if err := repo.Update(ctx, b); !errors.Is(err, studentrepoport.ErrEmailAlreadyExists) {
			t.Fatalf("Update(conflict) err=%v, want ErrEmailAlreadyExists", err)
		}

		// Keeping one's own email is not a conflict.
		a.Name = "Ana Maria"
		if err := repo.Update(ctx, a); err != nil {
			t.Fatalf("Update(same email) err=%v", err)
		}
	})

	t.Run("DeleteReleasesUniqueValues", func(t *testing.T) {
		ctx := context.Background()
		repo := fresh(t)

		s, _ := repo.Create(ctx, student("Ana", "ana@example.com", "RA001", "11144477735", now))
		if err := repo.Delete(ctx, s.ID); err != nil {
			t.Fatalf("Delete err=%v", err)
		}
		if _, err := repo.GetByID(ctx, s.ID); !errors.Is(err, studentrepoport.ErrNotFound) {
			t.Fatalf("GetByID(deleted) err=%v, want ErrNotFound", err)
		}
		if err := repo.Delete(ctx, s.ID); !errors.Is(err, studentrepoport.ErrNotFound) {
			t.Fatalf("Delete(deleted) err=%v, want ErrNotFound", err)
		}
		if _, err := repo.Create(ctx, student("Ana", "ana@example.com", "RA001", "11144477735", now)); err != nil {
			t.Fatalf("re-Create after delete err=%v", err)
		}
	})

	t.Run("ListOrdersByName", func(t *testing.T) {
		ctx := context.Background()
		repo := fresh(t)

		_, _ = repo.Create(ctx, student("maria", "maria@example.com", "RA002", "98765432100", now))
		_, _ = repo.Create(ctx, student("Ana", "ana@example.com", "RA003", "11144477735", now))
		_, _ = repo.Create(ctx, student("Maria", "maria2@example.com", "RA001", "12345678909", now))

		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List err=%v", err)
		}
		if len(got) != 3 {
			t.Fatalf("List() len=%d, want 3", len(got))
		}
		// Case-insensitive sort; tie breaks by ID.
		if got[0].Name != "Ana" || got[1].RA != "RA002" || got[2].RA != "RA001" {
			t.Fatalf("List() order=%v", []string{got[0].RA, got[1].RA, got[2].RA})
		}
	})

	t.Run("FindByUniqueFields", func(t *testing.T) {
		ctx := context.Background()
		repo := fresh(t)

		s, _ := repo.Create(ctx, student("Ana", "ana@example.com", "RA001", "11144477735", now))

		if got, err := repo.FindByRA(ctx, "RA001"); err != nil || got.ID != s.ID {
			t.Fatalf("FindByRA got=%+v err=%v", got, err)
		}
		if got, err := repo.FindByCPF(ctx, "11144477735"); err != nil || got.ID != s.ID {
			t.Fatalf("FindByCPF got=%+v err=%v", got, err)
		}
		if got, err := repo.FindByEmail(ctx, "ANA@example.com"); err != nil || got.ID != s.ID {
			t.Fatalf("FindByEmail got=%+v err=%v", got, err)
		}
		if _, err := repo.FindByRA(ctx, "RA999"); !errors.Is(err, studentrepoport.ErrNotFound) {
			t.Fatalf("FindByRA(missing) err=%v, want ErrNotFound", err)
		}
		if _, err := repo.FindByCPF(ctx, "52998224725"); !errors.Is(err, studentrepoport.ErrNotFound) {
			t.Fatalf("FindByCPF(missing) err=%v, want ErrNotFound", err)
		}
	})
}

func student(name, email, ra, cpf string, now time.Time) studentrepoport.Student {
	return studentrepoport.Student{
		Name:      name,
		Email:     email,
		RA:        ra,
		CPF:       cpf,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
