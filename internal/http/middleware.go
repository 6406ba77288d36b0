package http

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/opsroster/internal/logging"
)

// RequestLogger attaches a per-request logger to the context and emits
// start/finish events with the request duration.
func RequestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With().
				Uint64("request_id", id).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.Info().Msg("request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.Info().Dur("duration", time.Since(start)).Msg("request completed")
		})
	}
}
