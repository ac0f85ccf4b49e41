package studentrepo

import (
	"testing"

	"github.com/student-enrollment/enrollment-api/internal/adapters/contracttest"
	"github.com/student-enrollment/enrollment-api/internal/adapters/postgres/testutil"
	studentrepoport "github.com/student-enrollment/enrollment-api/internal/ports/out/studentrepo"
)

func TestContract_PostgresStudentRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunStudentRepo(t, func(t *testing.T) (studentrepoport.Repository, func()) {
		t.Helper()
		testutil.Truncate(t, pool, "students")
		return NewRepo(pool), nil
	})
}
