package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/student-enrollment/enrollment-api/internal/domain/cpf"
)

func TestGenerateProducesValidCPFs(t *testing.T) {
	t.Parallel()

	seq := 0
	intn := func(n int) int {
		seq++
		return (seq * 7) % n
	}
	for range 50 {
		v := generate(intn)
		if !cpf.IsValid(v) {
			t.Fatalf("generate()=%q is not valid", v)
		}
	}
}

func TestGenerateSkipsRepeatedBase(t *testing.T) {
	t.Parallel()

	// First nine draws yield "000000000", which must be skipped.
	calls := 0
	intn := func(int) int {
		calls++
		if calls <= cpf.BaseLength {
			return 0
		}
		return calls % 10
	}
	v := generate(intn)
	if v[:cpf.BaseLength] == "000000000" || !cpf.IsValid(v) {
		t.Fatalf("generate()=%q", v)
	}
}

func TestFormatAndStrip(t *testing.T) {
	t.Parallel()

	if got := format("11144477735"); got != "111.444.777-35" {
		t.Fatalf("format()=%q", got)
	}
	if got := stripFormatting(" 111.444.777-35 "); got != "11144477735" {
		t.Fatalf("stripFormatting()=%q", got)
	}
}

func TestHandleCheck(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handleCheck(rec, httptest.NewRequest(http.MethodGet, "/check?cpf=111.444.777-35", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var got struct {
		Digits string `json:"digits"`
		Valid  bool   `json:"valid"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Digits != "11144477735" || !got.Valid {
		t.Fatalf("got %+v", got)
	}

	rec = httptest.NewRecorder()
	handleCheck(rec, httptest.NewRequest(http.MethodGet, "/check", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing cpf status=%d", rec.Code)
	}
}

func TestHandleGenerate(t *testing.T) {
	t.Parallel()

	seq := 0
	h := handleGenerate(func(n int) int { seq++; return seq % n })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/generate?n=3&formatted=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var got struct {
		CPFs []string `json:"cpfs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.CPFs) != 3 {
		t.Fatalf("len=%d", len(got.CPFs))
	}
	for _, v := range got.CPFs {
		if len(v) != 14 || !cpf.IsValid(stripFormatting(v)) {
			t.Fatalf("bad generated cpf %q", v)
		}
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/generate?n=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("n=0 status=%d", rec.Code)
	}
}
