package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (Database, RedisClient, AsyncPublisher all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheck names one dependency probed by the health endpoint.
type HealthCheck struct {
	Name    string
	Checker HealthChecker
}

// HealthHandler returns an http.HandlerFunc that probes every check concurrently
// and answers 503 when any of them fails. The body is a flat JSON object:
// {"status": "ok"|"degraded", "<name>": "ok"|"unreachable", ...}.
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		results := make([]string, len(checks))
		var wg sync.WaitGroup
		for i, c := range checks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = "ok"
				if err := c.Checker.Ping(ctx); err != nil {
					results[i] = "unreachable"
				}
			}()
		}
		wg.Wait()

		resp := map[string]string{"status": "ok"}
		for i, c := range checks {
			resp[c.Name] = results[i]
			if results[i] != "ok" {
				resp["status"] = "degraded"
			}
		}

		status := http.StatusOK
		if resp["status"] != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
