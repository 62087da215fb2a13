package controllers

import (
	"log/slog"
	"net/http"

	"github.com/moogar0880/problems"
	"golang.org/x/crypto/bcrypt"
)

// AuthController guards routes with a single shared API key. The key itself
// is never configured, only its bcrypt hash.
type AuthController struct {
	APIKeyHash []byte
}

func NewAuthController(apiKeyHash string) AuthController {
	if apiKeyHash == "" {
		return AuthController{}
	}
	return AuthController{APIKeyHash: []byte(apiKeyHash)}
}

// RequireAuth lets the request through when no hash is configured or the
// X-API-Key header matches it.
func (wc *AuthController) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(wc.APIKeyHash) == 0 {
			next(w, r)
			return
		}
		// Supported headers: X-API-Key: <key>
		apiKey := r.Header.Get("X-API-Key")
		if apiKey != "" && bcrypt.CompareHashAndPassword(wc.APIKeyHash, []byte(apiKey)) == nil {
			next(w, r)
			return
		}
		slog.WarnContext(r.Context(), "Rejected unauthenticated request", "path", r.URL.Path)
		writeProblem(w, problems.NewStatusProblem(http.StatusUnauthorized).
			WithInstance(r.URL.Path).
			WithType("unauthorized").
			WithDetail("missing or invalid X-API-Key"))
	}
}
