package middleware

import (
	"log"
	"net/http"
	"strings"

	"user-profile-service/pkg/jwtutil"
	"user-profile-service/pkg/response"
)

// AuthMiddleware guards the API behind validated identity tokens. Token
// issuance and session lifecycle belong to the upstream identity system;
// this layer only verifies the signature and trusts the sub claim.
type AuthMiddleware struct {
	Verifier *jwtutil.Verifier
}

func NewAuthMiddleware(verifier *jwtutil.Verifier) *AuthMiddleware {
	return &AuthMiddleware{Verifier: verifier}
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth rejects requests without a valid token and stamps the
// authenticated subject into the request context.
func (am *AuthMiddleware) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, "No token provided")
				return
			}

			claims, err := am.Verifier.ParseAndValidate(token)
			if err != nil {
				log.Printf("[WARN] Token validation failed from %s: %v", r.RemoteAddr, err)
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, setContextValues(r, claims, token))
		})
	}
}
