package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Shorabul/Homigo-Server/pkg/logger"
)

// RequestLogger builds a request-scoped logger from whatever the context
// carries at mount time (correlation_id, actor, trace_id, span_id) and
// stores it via logger.NewContext for handlers to retrieve with
// logger.FromContext. Mount it after the middleware that populates the
// fields you want; it can be mounted more than once, and each pass rebuilds
// the logger from the current context.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
