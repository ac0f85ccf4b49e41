package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/student-enrollment/enrollment-api/internal/platform/metrics"
)

// RouterOptions configures optional router behavior.
type RouterOptions struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// ServeMetrics mounts /metrics on this router. Leave false when metrics have their own listener.
	ServeMetrics bool
}

// NewRouter constructs the API HTTP router with default options.
func NewRouter(api *Server) http.Handler {
	return NewRouterWithOptions(api, RouterOptions{})
}

func NewRouterWithOptions(api *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(Instrument(opts.Logger, opts.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Location", headerRequestID, headerReplayed},
		MaxAge:         300,
	}))

	// Health endpoint for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.ServeMetrics && opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get(routeStudents, api.ListStudents)
	r.Post(routeStudents, api.CreateStudent)
	r.Get(routeStudents+"/{id}", api.GetStudent)
	r.Put(routeStudents+"/{id}", api.UpdateStudent)
	r.Delete(routeStudents+"/{id}", api.DeleteStudent)
	r.Get("/api/cpf/{cpf}/validity", api.CheckCPF)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, codeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed", nil)
	})
	return r
}
