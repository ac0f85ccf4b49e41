package main

import (
	"encoding/json"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/student-enrollment/enrollment-api/internal/domain/cpf"
)

// Tiny dev-only helper that hands out checksum-valid CPFs for local testing and seeding,
// and checks candidates the same way the API does.
//
//   GET /generate?n=5&formatted=true
//   GET /check?cpf=111.444.777-35

const maxGenerate = 100

func main() {
	port := getenv("PORT", "5557")

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/generate", handleGenerate(rand.N[int]))
	mux.HandleFunc("/check", handleCheck)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("devcpf listening on :%s", port)
	log.Fatal(srv.ListenAndServe())
}

func handleGenerate(intn func(int) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := 1
		if v := r.URL.Query().Get("n"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 || parsed > maxGenerate {
				http.Error(w, "n must be between 1 and 100", http.StatusBadRequest)
				return
			}
			n = parsed
		}
		formatted := r.URL.Query().Get("formatted") == "true"

		out := make([]string, 0, n)
		for range n {
			v := generate(intn)
			if formatted {
				v = format(v)
			}
			out = append(out, v)
		}
		writeJSON(w, map[string]any{"cpfs": out})
	}
}

func handleCheck(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("cpf")
	if raw == "" {
		http.Error(w, "missing cpf", http.StatusBadRequest)
		return
	}
	digits := stripFormatting(raw)
	writeJSON(w, map[string]any{
		"input":  raw,
		"digits": digits,
		"valid":  cpf.IsValid(digits),
	})
}

// generate draws random 9-digit bases until one is not a repeated digit, then appends the check digits.
func generate(intn func(int) int) string {
	for {
		var b strings.Builder
		for range cpf.BaseLength {
			b.WriteByte(byte('0' + intn(10)))
		}
		base := b.String()
		if strings.Count(base, base[:1]) == len(base) {
			continue
		}
		check, ok := cpf.CheckDigits(base)
		if !ok {
			continue
		}
		return base + check
	}
}

// format renders 11 digits as XXX.XXX.XXX-XX.
func format(digits string) string {
	if len(digits) != cpf.Length {
		return digits
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}

// stripFormatting drops the '.' and '-' separators; the API itself only accepts bare digits.
func stripFormatting(s string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(s))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
