package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"
)

const secretHeader = "X-Orianna-Secret"

// Secret gates the ops endpoints behind a shared secret header. With no
// secret configured, every request is rejected; the ops API is opt-in.
func Secret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "ops API disabled", http.StatusForbidden)
				return
			}
			provided := r.Header.Get(secretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				log.Warn().Str("path", r.URL.Path).Msg("ops request with bad secret")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
