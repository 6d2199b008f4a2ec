// SPDX-License-Identifier: MIT

package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/sparkledex/sparkledex/internal/log"
)

// Recoverer ensures that panics inside any downstream handler do not crash
// the process. It logs the panic with context and returns a 500 JSON body.
// When debug reports true, or the request carries ?debug=1, the panic value
// and stack are echoed in the response; the stack is always logged either
// way.
func Recoverer(debug func() bool) func(http.Handler) http.Handler {
	if debug == nil {
		debug = func() bool { return false }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					buf := make([]byte, 8192)
					n := runtime.Stack(buf, false)
					stack := string(buf[:n])

					reqID := log.RequestIDFromContext(r.Context())

					pathLabel := r.URL.Path
					if !utf8.ValidString(pathLabel) {
						pathLabel = strings.ToValidUTF8(pathLabel, "")
					}

					logger := log.WithComponentFromContext(r.Context(), "panic-recovery")
					logger.Error().
						Str(log.FieldEvent, "panic.recovered").
						Str("method", r.Method).
						Str("path", pathLabel).
						Str("remote_addr", r.RemoteAddr).
						Str("request_id", reqID).
						Interface("panic_value", rec).
						Str("stack_trace", stack).
						Msg("panic recovered in HTTP handler")

					body := map[string]any{
						"error":      "internal server error",
						"request_id": reqID,
					}
					if debug() || r.URL.Query().Get("debug") == "1" {
						body["panic"] = stringify(rec)
						body["stack"] = stack
					}

					// Best-effort JSON error response
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(body)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case error:
		return t.Error()
	case string:
		return t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "unprintable panic value"
		}
		return string(b)
	}
}
