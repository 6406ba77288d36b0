package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/example/opsroster/internal/logging"
)

func TestRequestLogger(t *testing.T) {

	t.Run("logs start and completion with request metadata", func(t *testing.T) {
		var buf bytes.Buffer
		base := zerolog.New(&buf)

		called := false
		handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/work-items", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.True(t, called)
		require.Equal(t, http.StatusNoContent, rec.Code)

		output := buf.String()
		require.Contains(t, output, "request started")
		require.Contains(t, output, "request completed")
		require.Contains(t, output, `"method":"GET"`)
		require.Contains(t, output, `"path":"/work-items"`)
		require.Contains(t, output, `"request_id":1`)
	})

	t.Run("exposes the request logger through the context", func(t *testing.T) {
		var buf bytes.Buffer
		base := zerolog.New(&buf)

		handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.FromContext(r.Context(), zerolog.Nop())
			logger.Info().Msg("from handler")
		}))

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.Contains(t, buf.String(), "from handler")
		require.Contains(t, buf.String(), `"path":"/healthz"`)
	})
}
