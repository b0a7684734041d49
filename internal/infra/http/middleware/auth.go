package middleware

import (
	"net/http"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/apperr"
	"github.com/xavierca1/ligue-crm/internal/auth"
)

// Auth resolves the caller principal from the bearer token and stores it in
// the request context. It is the first gate of the pipeline.
func Auth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				apperr.WriteHTTP(w, apperr.Auth())
				return
			}

			principal, err := verifier.Verify(r.Context(), token)
			if err != nil {
				apperr.WriteHTTP(w, apperr.Auth())
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
