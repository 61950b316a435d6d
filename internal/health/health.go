// Package health provides HTTP health check endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const checkTimeout = 3 * time.Second

// Status represents the health check response.
type Status struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Version   string           `json:"version,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// Check represents an individual health check.
type Check struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// CheckFunc is a function that performs a health check.
type CheckFunc func(ctx context.Context) (bool, string)

// Checker runs the registered checks and serves /health, /ready and /live.
type Checker struct {
	version string
	checks  map[string]CheckFunc
	mu      sync.RWMutex
}

func NewChecker(version string) *Checker {
	return &Checker{
		version: version,
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a health check function.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Register mounts the endpoints on mux.
func (c *Checker) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", c.handleHealth)
	mux.HandleFunc("GET /ready", c.handleReady)
	mux.HandleFunc("GET /live", c.handleLive)
}

// Run executes every check concurrently, each bounded by its own timeout.
func (c *Checker) Run(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(checks))
		healthy = true
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, fn := range checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, checkTimeout)
			defer cancel()

			ok, msg := fn(cctx)

			mu.Lock()
			results[name] = Check{Healthy: ok, Message: msg}
			if !ok {
				healthy = false
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	return Status{
		Status:    status,
		Checks:    results,
		Version:   c.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func (c *Checker) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := c.Run(r.Context())

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}

func (c *Checker) handleReady(w http.ResponseWriter, r *http.Request) {
	status := c.Run(r.Context())

	if status.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (c *Checker) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
