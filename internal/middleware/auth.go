package middleware

import (
	"context"
	"log"
	"net/http"

	"waste-wizard-backend/internal/session"
	"waste-wizard-backend/pkg/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// LoginPath is the only page reachable without a session
const LoginPath = "/login"

// ProtectedPages are redirected to LoginPath when no session is present
var ProtectedPages = map[string]bool{
	"/":           true,
	"/capacity":   true,
	"/statistics": true,
	"/configure":  true,
}

// Verifier resolves the session of a request
type Verifier interface {
	FromRequest(r *http.Request) (*session.Claims, error)
}

// SessionGate guards the dashboard pages. Unauthenticated requests to a
// protected page go to /login, authenticated requests to /login go to /.
// Every other path passes through, with claims attached when available.
func SessionGate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.FromRequest(r)
			authenticated := err == nil

			switch {
			case ProtectedPages[r.URL.Path] && !authenticated:
				log.Printf("🔒 No valid session for %s, redirecting to login", r.URL.Path)
				http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
				return
			case r.URL.Path == LoginPath && authenticated:
				http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
				return
			}

			if authenticated {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects API requests without a valid session with 401
func RequireSession(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.FromRequest(r)
			if err != nil {
				log.Printf("❌ Unauthorized %s %s: %v", r.Method, r.URL.Path, err)
				utils.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores session claims in ctx
func WithClaims(ctx context.Context, claims *session.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(r *http.Request) (*session.Claims, bool) {
	claims, ok := r.Context().Value(UserContextKey).(*session.Claims)
	return claims, ok
}
