package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 5 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name string
	ping func(ctx context.Context) error
}

// HealthHandler serves liveness and readiness checks. A close needs both the
// ledger database and the Redis lock, so the service is only ready when both
// answer.
type HealthHandler struct {
	deps []dependency
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{deps: []dependency{
		{name: "postgres", ping: db.Ping},
		{name: "redis", ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	}}
}

// ReadinessResponse reports each dependency as "ok" or "unavailable".
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness pings every dependency in parallel and returns 503 if any fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]string, len(h.deps))
		ready  = true
	)

	var g errgroup.Group
	for _, dep := range h.deps {
		g.Go(func() error {
			err := dep.ping(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				ready = false
				checks[dep.name] = "unavailable"
				zerolog.Ctx(r.Context()).Warn().Err(err).Str("dependency", dep.name).Msg("readiness check failed")
				return nil
			}
			checks[dep.name] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, ReadinessResponse{Status: "unavailable", Checks: checks})
		return
	}
	writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Checks: checks})
}
