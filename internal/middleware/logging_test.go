// internal/middleware/logging_test.go
package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMiddlewareRecordsStatus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(LogMiddleware(logger))
	r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, 15, entry.Data["bytes"])
	assert.Equal(t, "/teapot", entry.Data["path"])
	assert.NotEmpty(t, entry.Data["request_id"])
}

func TestLogWebSocketDisconnectIncludesError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	player := uuid.New()

	LogWebSocketConnect(logger, "1.2.3.4", "room", player)
	LogWebSocketDisconnect(logger, "1.2.3.4", "room", player, errors.New("boom"))

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, player.String(), hook.Entries[0].Data["player"])
	assert.NotContains(t, hook.Entries[0].Data, "error")
	assert.EqualError(t, hook.Entries[1].Data["error"].(error), "boom")
}
