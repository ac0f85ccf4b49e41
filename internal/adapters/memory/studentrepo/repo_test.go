package studentrepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/student-enrollment/enrollment-api/internal/ports/out/studentrepo"
)

func TestRepo_CreateIgnoresCallerID(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	got, err := r.Create(context.Background(), studentrepo.Student{ID: 77, Name: "Ana", Email: "a@example.com", RA: "RA1", CPF: "11144477735"})
	if err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	if got.ID != 1 {
		t.Fatalf("Create().ID=%d, want 1", got.ID)
	}
}

func TestRepo_IDsAreNotReusedAfterDelete(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	a, _ := r.Create(context.Background(), studentrepo.Student{Name: "A", Email: "a@example.com", RA: "RA1", CPF: "11144477735"})
	if err := r.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("Delete() err=%v", err)
	}
	b, _ := r.Create(context.Background(), studentrepo.Student{Name: "B", Email: "b@example.com", RA: "RA2", CPF: "52998224725"})
	if b.ID <= a.ID {
		t.Fatalf("second id=%d, want > %d", b.ID, a.ID)
	}
}

func TestRepo_ConcurrentCreatesKeepUniqueness(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	now := time.Unix(100, 0).UTC()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create(context.Background(), studentrepo.Student{
				Name: "Same", Email: "same@example.com", RA: "RA1", CPF: "11144477735",
				CreatedAt: now, UpdatedAt: now,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("succeeded=%d, want exactly 1", succeeded)
	}
	all, _ := r.List(context.Background())
	if len(all) != 1 {
		t.Fatalf("List() len=%d, want 1", len(all))
	}
}
