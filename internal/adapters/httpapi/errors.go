package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/student-enrollment/enrollment-api/internal/app/students"
)

// Error codes produced by the HTTP adapter itself. Domain codes come from the students package.
const (
	codeInvalidBody      = "INVALID_REQUEST_BODY"
	codeInvalidID        = "INVALID_ID"
	codeNotFound         = "NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the failure envelope. Errors carries per-field messages for validation failures.
type ErrorResponse struct {
	Success   bool                              `json:"success"`
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Errors    nullable.Nullable[map[string]any] `json:"errors,omitempty"`
	RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
}

func newErrorResponse(ctx context.Context, code string, message string, details map[string]any) ErrorResponse {
	er := ErrorResponse{Code: code, Message: message}
	if len(details) > 0 {
		er.Errors = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(ctx); rid != "" {
		er.RequestID = nullable.NewNullableWithValue(rid)
	}
	return er
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, newErrorResponse(r.Context(), code, message, details))
}

// writeAppError maps a service error onto the envelope. Anything that is not a *students.Error is
// logged and reported as 500 without leaking the cause.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *students.Error
	if errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	s.log().ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Any("error", err),
	)
	writeError(w, r, http.StatusInternalServerError, codeInternal, "internal server error", nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
