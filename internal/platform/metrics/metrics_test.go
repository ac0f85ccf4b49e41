package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAndExposition(t *testing.T) {
	t.Parallel()

	m := New()
	m.IncStudentCreated()
	m.IncStudentCreated()
	m.IncCPFRejected()
	m.ObserveRequest(http.MethodGet, "/api/students", http.StatusOK, time.Now())

	assert.InDelta(t, 2, testutil.ToFloat64(m.StudentsCreated), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CPFRejected), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/students", "200")), 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "enrollment_students_created_total 2"))
}

func TestMetrics_NilSafeHelpers(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncStudentCreated()
		m.IncStudentDeleted()
		m.IncCPFRejected()
		m.IncIdempotentReplay()
	})
}
