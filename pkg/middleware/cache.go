package middleware

import (
	"fmt"
	"net/http"
	"time"
)

// CacheControl returns middleware that marks GET responses as publicly
// cacheable for the given duration. Non-GET requests pass through
// untouched so intermediaries never cache mutations.
func CacheControl(maxAge time.Duration) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
