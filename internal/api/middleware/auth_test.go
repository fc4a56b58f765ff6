package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teachmate/teachmate/internal/auth/session"
)

const testSecret = "test-secret"

func protectedHandler(t *testing.T, wantUserID string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := UserID(r.Context()); got != wantUserID {
			t.Errorf("UserID() = %q, want %q", got, wantUserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuth_BearerHeader(t *testing.T) {
	tok, err := session.Issue(testSecret, "user-1", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	handler := SessionAuth(testSecret)(protectedHandler(t, "user-1"))
	req := httptest.NewRequest("GET", "/api/courses", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionAuth_Cookie(t *testing.T) {
	tok, err := session.Issue(testSecret, "user-1", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	handler := SessionAuth(testSecret)(protectedHandler(t, "user-1"))
	req := httptest.NewRequest("GET", "/api/courses", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tok})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionAuth_Rejections(t *testing.T) {
	expired, _ := session.Issue(testSecret, "user-1", -time.Minute)
	wrongKey, _ := session.Issue("another-secret", "user-1", time.Hour)

	tests := []struct {
		name    string
		prepare func(r *http.Request)
	}{
		{name: "no credentials", prepare: func(r *http.Request) {}},
		{name: "expired token", prepare: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+expired)
		}},
		{name: "wrong signing key", prepare: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+wrongKey)
		}},
		{name: "malformed token", prepare: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer garbage")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := SessionAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))
			req := httptest.NewRequest("GET", "/api/courses", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if called {
				t.Fatal("protected handler must not run without a valid session")
			}
		})
	}
}

func TestUserID_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := UserID(req.Context()); got != "" {
		t.Fatalf("UserID() on bare context = %q, want empty", got)
	}
}
