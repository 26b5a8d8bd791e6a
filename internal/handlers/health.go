// internal/handlers/health.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a ping function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

type healthResult struct {
	Status string `json:"status"`
}

// HealthHandler reports each dependency as ok or error, and 503 if any failed.
func HealthHandler(logger logrus.FieldLogger, checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		results := make(map[string]healthResult, len(checks))
		status := http.StatusOK
		for name, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.WithError(err).WithField("check", name).Error("health check failed")
				results[name] = healthResult{Status: "error"}
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = healthResult{Status: "ok"}
		}
		writeJSON(w, status, results)
	}
}
