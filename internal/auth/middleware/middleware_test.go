package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campuskit/examportal/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("test-secret", time.Hour)
	tok, err := a.IssueJWT("user-1", "student")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "user-1" || c.Role != "student" {
		t.Errorf("claims = %q/%q, want user-1/student", c.Sub, c.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	a := NewAuthService("secret-a", time.Hour)
	b := NewAuthService("secret-b", time.Hour)
	tok, err := a.IssueJWT("user-1", "student")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Parse(tok); err == nil {
		t.Fatal("token signed with a different secret must not parse")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	a := NewAuthService("test-secret", time.Nanosecond)
	tok, err := a.IssueJWT("user-1", "student")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := a.Parse(tok); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret", time.Hour)
	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no header: got %d, want 401", rec.Code)
	}

	tok, err := a.IssueJWT("user-1", "admin")
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: got %d, want 200", rec.Code)
	}
	if gotSub != "user-1" || gotRole != "admin" {
		t.Errorf("context = %q/%q, want user-1/admin", gotSub, gotRole)
	}
}
