package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "exam:take", true},
		{"student", "result:view-own", true},
		{"student", "question:create", false},
		{"student", "grade:update", false},
		{"admin", "question:create", true}, // wildcard
		{"admin", "anything:at-all", true},
		{"nobody", "exam:take", false},
		{"", "exam:take", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "grade:update", "exam:take") {
		t.Error("student holds exam:take, Any must pass")
	}
	if c.Any("student", "grade:update", "users:list") {
		t.Error("student holds neither permission")
	}
}

func TestPrefixPattern(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"result:*"}})
	if !c.Has("auditor", "result:view-own") {
		t.Error("prefix pattern must match")
	}
	if c.Has("auditor", "exam:take") {
		t.Error("prefix pattern must not leak across namespaces")
	}
}

func TestRequireMiddleware(t *testing.T) {
	h := Require("exam:take")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("no role in context: got %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "student")))
	if rec.Code != http.StatusOK {
		t.Errorf("student taking exam: got %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	grade := Require("grade:update")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	grade.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "student")))
	if rec.Code != http.StatusForbidden {
		t.Errorf("student grading: got %d, want 403", rec.Code)
	}
}
