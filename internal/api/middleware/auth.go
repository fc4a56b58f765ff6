// Package middleware holds the HTTP middleware for the API routes.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/teachmate/teachmate/internal/auth/session"
)

type contextKey string

const userIDKey contextKey = "userId"

// SessionAuth validates the session JWT from the Authorization header
// (Bearer token) or the session cookie and puts the user id on the request
// context.
func SessionAuth(jwtSecret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ""

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
			if tokenString == "" {
				if cookie, err := r.Cookie(session.CookieName); err == nil {
					tokenString = cookie.Value
				}
			}
			if tokenString == "" {
				unauthorized(w)
				return
			}

			userID, err := session.Parse(jwtSecret, tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id stored by SessionAuth, or ""
// when the request was not authenticated.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": {"message": "Invalid or missing session token", "type": "authentication_error"}}`))
}
