package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flm/internal/domain/auth"
)

func TestAuthAttachesUserFromBearerToken(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{
		UserID:    "user-1",
		RoleID:    "role-1",
		RoleName:  auth.RoleAdmin,
		SessionID: "sess-1",
	}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var got auth.UserContext
	var ok bool
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetUser(r.Context())
	}))

	r := httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !ok {
		t.Fatal("expected user in context")
	}
	if got.UserID != "user-1" || got.RoleName != auth.RoleAdmin || got.SessionID != "sess-1" {
		t.Fatalf("unexpected user context: %+v", got)
	}
}

func TestAuthIgnoresInvalidToken(t *testing.T) {
	var ok bool
	handler := Auth("secret-a")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = GetUser(r.Context())
	}))

	token, err := auth.GenerateToken("secret-b", auth.Claims{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	r := httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if ok {
		t.Fatal("token signed with the wrong secret must not authenticate")
	}
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))
	if seen == "" {
		t.Fatal("expected generated request id")
	}
	if rec.Header().Get("X-Request-Id") != seen {
		t.Fatal("request id not echoed in response header")
	}

	rec = httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Request-Id", "upstream-42")
	handler.ServeHTTP(rec, r)
	if seen != "upstream-42" {
		t.Fatalf("inbound request id not honored, got %q", seen)
	}
}
