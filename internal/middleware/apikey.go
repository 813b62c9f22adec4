package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/josh-kwaku/cryptogate/internal/handler"
)

const apiKeyHeader = "X-API-Key"

// APIKey rejects requests whose X-API-Key does not match key.
func APIKey(key string) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(apiKeyHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
				handler.RespondAppError(w, handler.ErrUnauthorized, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
