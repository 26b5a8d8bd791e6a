// internal/middleware/logging.go
package middleware

import (
	"fmt"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// LogMiddleware logs every request once it completes. It must run after chi's RequestID so the
// id is available; the wrapped writer still supports hijacking for websocket upgrades.
func LogMiddleware(logger logrus.FieldLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start),
					"remote":     r.RemoteAddr,
					"request_id": chimw.GetReqID(r.Context()),
				}).Info("HTTP Request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// LogWebSocketConnect logs an accepted websocket session.
func LogWebSocketConnect(logger logrus.FieldLogger, remoteAddr, room string, player fmt.Stringer) {
	logger.WithFields(logrus.Fields{
		"remote": remoteAddr,
		"room":   room,
		"player": player.String(),
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect logs the end of a websocket session.
func LogWebSocketDisconnect(logger logrus.FieldLogger, remoteAddr, room string, player fmt.Stringer, err error) {
	fields := logrus.Fields{
		"remote": remoteAddr,
		"room":   room,
		"player": player.String(),
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
