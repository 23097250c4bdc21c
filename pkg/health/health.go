// Package health serves the liveness and readiness endpoints of the wallet
// client's diagnostics listener.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Checker probes one dependency, such as the gateway or the state directory.
type Checker func(ctx context.Context) error

// Status of a component.
type Status string

// Component states.
const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Report is the JSON body of a readiness response.
type Report struct {
	Status    Status            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]Result `json:"checks,omitempty"`
}

// Result is the outcome of one checker.
type Result struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Handler serves the health endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewHandler creates a handler with no checkers registered.
func NewHandler() *Handler {
	return &Handler{checkers: make(map[string]Checker)}
}

// Register adds a named checker. Registering the same name again replaces it.
func (h *Handler) Register(name string, check Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = check
}

// Live always answers 200 while the process is running.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, http.StatusOK, Report{
		Status:    StatusUp,
		Timestamp: time.Now().UTC(),
	})
}

// Ready runs every registered checker and answers 200 or 503.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.mu.RLock()
	checkers := make(map[string]Checker, len(h.checkers))
	for name, check := range h.checkers {
		checkers[name] = check
	}
	h.mu.RUnlock()

	report := Report{
		Status:    StatusUp,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]Result, len(checkers)),
	}

	for name, check := range checkers {
		if err := check(ctx); err != nil {
			report.Checks[name] = Result{Status: StatusDown, Error: err.Error()}
			report.Status = StatusDown
		} else {
			report.Checks[name] = Result{Status: StatusUp}
		}
	}

	status := http.StatusOK
	if report.Status == StatusDown {
		status = http.StatusServiceUnavailable
	}
	writeReport(w, status, report)
}

func writeReport(w http.ResponseWriter, status int, report Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}
