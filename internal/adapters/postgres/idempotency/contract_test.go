package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/student-enrollment/enrollment-api/internal/adapters/contracttest"
	"github.com/student-enrollment/enrollment-api/internal/adapters/postgres/testutil"
	idempotencyport "github.com/student-enrollment/enrollment-api/internal/ports/out/idempotency"
)

func TestContract_PostgresIdempotencyStore(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)
	testutil.Truncate(t, pool, "idempotency_keys")

	contracttest.RunIdempotencyStore(t, func(t *testing.T) (idempotencyport.Store, func()) {
		t.Helper()
		return NewStore(pool), nil
	})
}

func TestPurgeOlderThan(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)
	testutil.Truncate(t, pool, "idempotency_keys")
	ctx := context.Background()
	store := NewStore(pool)

	old := idempotencyport.Fingerprint{Key: "old-key-1", Method: "POST", Route: "/api/students"}
	fresh := idempotencyport.Fingerprint{Key: "new-key-1", Method: "POST", Route: "/api/students"}
	now := time.Unix(1700000000, 0).UTC()

	if err := store.Put(ctx, old, idempotencyport.Record{ContentType: "text/plain", CreatedAt: now.Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("Put(old) err=%v", err)
	}
	if err := store.Put(ctx, fresh, idempotencyport.Record{ContentType: "text/plain", CreatedAt: now}); err != nil {
		t.Fatalf("Put(fresh) err=%v", err)
	}

	n, err := store.PurgeOlderThan(ctx, now.Add(-24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("PurgeOlderThan() n=%d err=%v, want 1", n, err)
	}
	if _, ok, _ := store.Get(ctx, old); ok {
		t.Fatalf("expected old record purged")
	}
	if _, ok, _ := store.Get(ctx, fresh); !ok {
		t.Fatalf("expected fresh record kept")
	}
}
