package itest

import (
	"net/http"
	"strconv"
	"testing"
)

func TestStudents_ITest(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			srv := newTestServer(t, b)

			// Empty list.
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, "/api/students", nil, nil)
				requireStatus(t, status, body, http.StatusOK)
				if got := mustUnmarshal[studentListResponse](t, body); !got.Success || len(got.Data) != 0 {
					t.Fatalf("expected empty list; body=%s", string(body))
				}
			}

			// Invalid CPF is rejected before anything is stored.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/api/students", nil, map[string]any{
					"Name": "Carla Dias", "Email": "carla@example.com", "RA": "RA900", "CPF": "12345678901",
				})
				requireErrorCode(t, status, body, http.StatusBadRequest, "VALIDATION_ERROR")
			}

			// Create two students, the second with an idempotency key.
			var zeca, ana student
			{
				status, body, hdr := srv.doJSON(t, http.MethodPost, "/api/students", nil, map[string]any{
					"Name": "Zeca Lima", "Email": "zeca@example.com", "RA": "RA002", "CPF": "52998224725",
				})
				requireStatus(t, status, body, http.StatusCreated)
				requireHeaderPresent(t, hdr, "Location")
				zeca = mustUnmarshal[studentResponse](t, body).Data
			}
			idem := map[string]string{"Idempotency-Key": "itest-ana-0001"}
			anaBody := map[string]any{"Name": "ana costa", "Email": "ana@example.com", "RA": "RA001", "CPF": "11144477735"}
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/api/students", idem, anaBody)
				requireStatus(t, status, body, http.StatusCreated)
				ana = mustUnmarshal[studentResponse](t, body).Data
			}
			{
				status, body, hdr := srv.doJSON(t, http.MethodPost, "/api/students", idem, anaBody)
				requireStatus(t, status, body, http.StatusCreated)
				requireHeaderPresent(t, hdr, "Idempotent-Replayed")
				if got := mustUnmarshal[studentResponse](t, body).Data; got.ID != ana.ID {
					t.Fatalf("replayed id=%d want=%d", got.ID, ana.ID)
				}
			}

			// Duplicate CPF conflicts.
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/api/students", nil, map[string]any{
					"Name": "Outra Pessoa", "Email": "outra@example.com", "RA": "RA003", "CPF": "11144477735",
				})
				requireErrorCode(t, status, body, http.StatusConflict, "CPF_ALREADY_IN_USE")
			}

			// List is ordered by name, case-insensitively.
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, "/api/students", nil, nil)
				requireStatus(t, status, body, http.StatusOK)
				got := mustUnmarshal[studentListResponse](t, body).Data
				if len(got) != 2 || got[0].ID != ana.ID || got[1].ID != zeca.ID {
					t.Fatalf("unexpected list order: %+v", got)
				}
			}

			path := "/api/students/" + strconv.FormatInt(zeca.ID, 10)

			// Update name and email.
			{
				status, body, _ := srv.doJSON(t, http.MethodPut, path, nil, map[string]any{
					"Name": "Zeca Lima Jr", "Email": "zeca.jr@example.com",
				})
				requireStatus(t, status, body, http.StatusOK)
				got := mustUnmarshal[studentResponse](t, body).Data
				if got.Name != "Zeca Lima Jr" || got.RA != "RA002" {
					t.Fatalf("unexpected update result: %+v", got)
				}
			}

			// Email held by another student.
			{
				status, body, _ := srv.doJSON(t, http.MethodPut, path, nil, map[string]any{
					"Name": "Zeca Lima Jr", "Email": "ANA@example.com",
				})
				requireErrorCode(t, status, body, http.StatusConflict, "EMAIL_ALREADY_IN_USE")
			}

			// Delete, then it is gone.
			{
				status, body, _ := srv.doJSON(t, http.MethodDelete, path, nil, nil)
				requireStatus(t, status, body, http.StatusOK)
			}
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, path, nil, nil)
				requireErrorCode(t, status, body, http.StatusNotFound, "STUDENT_NOT_FOUND")
			}
		})
	}
}
