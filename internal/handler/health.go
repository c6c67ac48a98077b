package handler

import (
	"context"
	"net/http"
	"time"
)

// Check is a named readiness probe
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Readiness runs the readiness probes shared by HTTP and gRPC health
type Readiness struct {
	checks  []Check
	timeout time.Duration
}

// NewReadiness creates a readiness checker. Each probe gets timeout to answer.
func NewReadiness(timeout time.Duration, checks ...Check) *Readiness {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Readiness{checks: checks, timeout: timeout}
}

// Check runs every probe and returns the failures keyed by probe name
func (r *Readiness) Check(ctx context.Context) map[string]string {
	failures := map[string]string{}
	for _, c := range r.checks {
		probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := c.Probe(probeCtx)
		cancel()
		if err != nil {
			failures[c.Name] = err.Error()
		}
	}
	return failures
}

// Live answers liveness probes
func (r *Readiness) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready answers readiness probes
func (r *Readiness) Ready(w http.ResponseWriter, req *http.Request) {
	failures := r.Check(req.Context())
	if len(failures) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"checks": failures,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
