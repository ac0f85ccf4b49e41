package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/student-enrollment/enrollment-api/internal/app/students"
	"github.com/student-enrollment/enrollment-api/internal/domain"
	"github.com/student-enrollment/enrollment-api/internal/domain/cpf"
	"github.com/student-enrollment/enrollment-api/internal/platform/metrics"
	"github.com/student-enrollment/enrollment-api/internal/ports/out/idempotency"
)

const (
	maxBodyBytes = 1 << 20

	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"

	routeStudents = "/api/students"
)

// Server holds the HTTP handlers for the student API.
type Server struct {
	Students *students.Service
	// Idem is optional; without it Idempotency-Key headers are ignored.
	Idem idempotency.Store

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func NewServer(svc *students.Service, idem idempotency.Store) *Server {
	return &Server{
		Students: svc,
		Idem:     idem,
		Logger:   slog.Default(),
	}
}

func (s *Server) ListStudents(w http.ResponseWriter, r *http.Request) {
	ss, err := s.Students.ListStudents(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	out := make([]studentDTO, 0, len(ss))
	for _, st := range ss {
		out = append(out, studentFromDomain(st))
	}
	writeJSON(w, http.StatusOK, ok("", out))
}

func (s *Server) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, bound := bindStudentID(w, r)
	if !bound {
		return
	}
	st, err := s.Students.GetStudent(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope[studentDTO]{Success: true, Data: studentFromDomain(st)})
}

func (s *Server) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var body createStudentRequest
	if !decodeBody(w, r, &body) {
		return
	}

	// Idempotency handling:
	// - Replay if same key+route+bodyHash
	// - Reject if same key+route with different bodyHash (409)
	var respFP *idempotency.Fingerprint
	if key := strings.TrimSpace(r.Header.Get(headerIdempotencyKey)); key != "" && s.Idem != nil {
		if n := len(key); n < idempotency.MinKeyLength || n > idempotency.MaxKeyLength {
			writeError(w, r, http.StatusBadRequest, students.CodeValidation, "invalid idempotency key", map[string]any{
				headerIdempotencyKey: fmt.Sprintf("must have between %d and %d characters", idempotency.MinKeyLength, idempotency.MaxKeyLength),
			})
			return
		}

		bodyHash, err := hashCreateStudentBody(body)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		metaFP := idempotency.Fingerprint{
			Key:      idempotency.Key(key),
			Method:   http.MethodPost,
			Route:    routeStudents,
			BodyHash: "",
		}
		if meta, found, err := s.Idem.Get(r.Context(), metaFP); err != nil {
			s.writeAppError(w, r, fmt.Errorf("idempotency lookup: %w", err))
			return
		} else if found {
			if string(meta.Body) != bodyHash {
				writeError(w, r, http.StatusConflict, students.CodeIdempotencyReuse, "idempotency key reuse with different payload", nil)
				return
			}
		} else if err := s.Idem.Put(r.Context(), metaFP, idempotency.Record{
			StatusCode:  0,
			ContentType: "text/plain",
			Body:        []byte(bodyHash),
			CreatedAt:   time.Now().UTC(),
		}); err != nil {
			s.log().WarnContext(r.Context(), "idempotency meta record not stored", slog.Any("error", err))
		}

		fp := metaFP
		fp.BodyHash = bodyHash
		if rec, found, err := s.Idem.Get(r.Context(), fp); err != nil {
			s.writeAppError(w, r, fmt.Errorf("idempotency lookup: %w", err))
			return
		} else if found && rec.StatusCode == http.StatusCreated && strings.HasPrefix(rec.ContentType, "application/json") {
			var payload envelope[studentDTO]
			if err := json.Unmarshal(rec.Body, &payload); err == nil {
				s.Metrics.IncIdempotentReplay()
				w.Header().Set(headerReplayed, "true")
				w.Header().Set("Location", studentLocation(payload.Data.ID))
				writeJSON(w, http.StatusCreated, payload)
				return
			}
		}
		respFP = &fp
	}

	created, err := s.Students.CreateStudent(r.Context(), body.toInput())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	resp := ok("student created", studentFromDomain(created))

	// Store successful response for replay.
	if respFP != nil {
		if b, err := json.Marshal(resp); err == nil {
			if err := s.Idem.Put(r.Context(), *respFP, idempotency.Record{
				StatusCode:  http.StatusCreated,
				ContentType: "application/json",
				Body:        b,
				CreatedAt:   time.Now().UTC(),
			}); err != nil {
				s.log().WarnContext(r.Context(), "idempotency response not stored", slog.Any("error", err))
			}
		}
	}

	w.Header().Set("Location", studentLocation(resp.Data.ID))
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, bound := bindStudentID(w, r)
	if !bound {
		return
	}
	var body updateStudentRequest
	if !decodeBody(w, r, &body) {
		return
	}
	updated, err := s.Students.UpdateStudent(r.Context(), id, body.toInput())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope[studentDTO]{Success: true, Message: "student updated", Data: studentFromDomain(updated)})
}

func (s *Server) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, bound := bindStudentID(w, r)
	if !bound {
		return
	}
	if err := s.Students.DeleteStudent(r.Context(), id); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "student deleted"})
}

// CheckCPF reports whether the path value is a valid CPF. Any input yields 200; validity is in the body.
func (s *Server) CheckCPF(w http.ResponseWriter, r *http.Request) {
	candidate := chi.URLParam(r, "cpf")
	writeJSON(w, http.StatusOK, ok("", cpfValidityDTO{CPF: candidate, Valid: cpf.IsValid(candidate)}))
}

func (s *Server) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// bindStudentID parses the {id} path parameter, writing a 400 when it is not an integer.
func bindStudentID(w http.ResponseWriter, r *http.Request) (domain.StudentID, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidID, "student id must be an integer", nil)
		return 0, false
	}
	return domain.StudentID(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "request body must be a JSON object"
		if errors.Is(err, io.EOF) {
			msg = "missing request body"
		}
		writeError(w, r, http.StatusBadRequest, codeInvalidBody, msg, nil)
		return false
	}
	return true
}

func studentLocation(id int64) string {
	return routeStudents + "/" + strconv.FormatInt(id, 10)
}

// hashCreateStudentBody hashes the body after the same normalization the service applies, so
// retries differing only in whitespace replay instead of conflicting.
func hashCreateStudentBody(b createStudentRequest) (string, error) {
	canon := b
	canon.Name = domain.NormalizeHumanName(canon.Name)
	canon.Email = domain.NormalizeEmail(canon.Email)
	canon.RA = strings.TrimSpace(canon.RA)
	canon.CPF = strings.TrimSpace(canon.CPF)

	raw, err := json.Marshal(canon)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
