package shared

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected date: %v", got)
	}

	got, err = ParseDate("2025-03-15T10:30:00Z")
	if err != nil {
		t.Fatalf("unexpected error for RFC3339: %v", err)
	}
	if got.Hour() != 10 {
		t.Fatalf("unexpected hour: %v", got)
	}

	if _, err := ParseDate("15/03/2025"); err == nil {
		t.Fatal("expected error for unsupported format")
	}

	got, err = ParseDate("")
	if err != nil || !got.IsZero() {
		t.Fatalf("empty input should be zero time, got %v, %v", got, err)
	}
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?limit=500&offset=20", nil)
	p := ParsePagination(r, 50, 200)
	if p.Limit != 200 || p.Offset != 20 {
		t.Fatalf("unexpected pagination: %+v", p)
	}

	r = httptest.NewRequest("GET", "/x", nil)
	p = ParsePagination(r, 50, 200)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	r = httptest.NewRequest("GET", "/x?limit=abc&offset=-3", nil)
	p = ParsePagination(r, 50, 200)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("garbage params should fall back to defaults: %+v", p)
	}
}

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("email", "", "email is required")
	v.Required("firstName", " ", "first name is required")
	v.Enum("status", "BOGUS", []string{"PENDING", "ACCEPTED"}, "unknown status")
	v.Range("score", 7, 0, 5)

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	issues := v.Issues()
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %d", len(issues))
	}
	for i := 1; i < len(issues); i++ {
		if issues[i-1].Field > issues[i].Field {
			t.Fatalf("issues not sorted: %+v", issues)
		}
	}
}

func TestValidatorAcceptsCleanPayload(t *testing.T) {
	v := NewValidator()
	v.Required("email", "a@b.c", "email is required")
	v.Enum("status", "pending", []string{"PENDING"}, "unknown status")
	if _, ok := v.Date("startDate", "2025-01-01"); !ok {
		t.Fatal("expected valid date")
	}
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %+v", v.Issues())
	}
}
