package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/student-enrollment/enrollment-api/internal/adapters/httpapi"
	memclock "github.com/student-enrollment/enrollment-api/internal/adapters/memory/clock"
	memidempotency "github.com/student-enrollment/enrollment-api/internal/adapters/memory/idempotency"
	memstudentrepo "github.com/student-enrollment/enrollment-api/internal/adapters/memory/studentrepo"
	mysqladapter "github.com/student-enrollment/enrollment-api/internal/adapters/mysql"
	mysqlstudentrepo "github.com/student-enrollment/enrollment-api/internal/adapters/mysql/studentrepo"
	pgidempotency "github.com/student-enrollment/enrollment-api/internal/adapters/postgres/idempotency"
	pgstudentrepo "github.com/student-enrollment/enrollment-api/internal/adapters/postgres/studentrepo"
	postgres_testutil "github.com/student-enrollment/enrollment-api/internal/adapters/postgres/testutil"
	"github.com/student-enrollment/enrollment-api/internal/app/students"
	idempotencyport "github.com/student-enrollment/enrollment-api/internal/ports/out/idempotency"
	studentrepoport "github.com/student-enrollment/enrollment-api/internal/ports/out/studentrepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
	backendMySQL    backend = "mysql"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "mysql":
		return []backend{backendMySQL}
	case "all":
		return []backend{backendMemory, backendPostgres, backendMySQL}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|mysql|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var (
		studentRepo studentrepoport.Repository
		idemStore   idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		postgres_testutil.Truncate(t, pool, "students", "idempotency_keys")
		studentRepo = pgstudentrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool)
	case backendMySQL:
		dsn := os.Getenv("TEST_MYSQL_DSN")
		if dsn == "" {
			t.Skip("TEST_MYSQL_DSN not set")
		}
		ctx := context.Background()
		db, err := mysqladapter.Open(ctx, dsn)
		if err != nil {
			t.Fatalf("open mysql: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		if err := mysqladapter.Migrate(ctx, db); err != nil {
			t.Fatalf("migrate mysql: %v", err)
		}
		if _, err := db.ExecContext(ctx, "TRUNCATE TABLE students"); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		studentRepo = mysqlstudentrepo.NewRepo(db)
		idemStore = memidempotency.NewStore()
	case backendMemory:
		studentRepo = memstudentrepo.NewRepo()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	svc := students.NewService(studentRepo, clk)
	api := httpapi.NewServer(svc, idemStore)
	handler := httpapi.NewRouter(api)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, headers map[string]string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

type student struct {
	ID    int64  `json:"Id"`
	Name  string `json:"Name"`
	Email string `json:"Email"`
	RA    string `json:"RA"`
	CPF   string `json:"CPF"`
}

type studentResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    student `json:"data"`
}

type studentListResponse struct {
	Success bool      `json:"success"`
	Data    []student `json:"data"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Success || got.Code != wantCode {
		t.Fatalf("code=%q want=%q body=%s", got.Code, wantCode, string(body))
	}
	if got.RequestID == "" {
		t.Fatalf("expected requestId; body=%s", string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
