// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"time"

	"github.com/sparkledex/sparkledex/internal/log"
)

// Logging creates the request logging middleware. It installs a
// request-scoped logger (enriched with the request ID and, when recording,
// trace IDs) into the context for downstream handlers, and emits one access
// log line per request when the handler returns.
func Logging() func(http.Handler) http.Handler {
	base := log.WithComponent("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := log.WithContext(r.Context(), base)
			ctx := reqLogger.WithContext(r.Context())

			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			reqLogger.Info().
				Str(log.FieldEvent, "http.request").
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int(log.FieldStatus, sw.statusCode).
				Dur("duration", time.Since(start)).
				Str(log.FieldRemoteIP, r.RemoteAddr).
				Msg("request handled")
		})
	}
}
