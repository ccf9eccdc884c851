// Package health provides HTTP health check endpoints for liveness, readiness, and status probes.
package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Goodnessmbakara/BlockVerify/internal/monitor"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Handler provides health check endpoints backed by the dependency monitor.
type Handler struct {
	startTime   time.Time
	environment string
	monitor     *monitor.Monitor
}

// New creates a new health handler.
func New(environment string, m *monitor.Monitor) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		monitor:     m,
	}
}

// Register mounts health check routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// LivenessResponse is the response for the liveness probe.
type LivenessResponse struct {
	Status string `json:"status"`
}

// HandleLiveness returns a simple liveness probe response.
// This endpoint should always return 200 OK if the service is running.
func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{
		Status: "alive",
	})
}

// ReadinessResponse is the response for the readiness probe.
type ReadinessResponse struct {
	Status string         `json:"status"`
	Checks monitor.Status `json:"checks"`
}

// HandleReadiness probes the store and ledger and returns 503 when either is
// down. An unfunded signing account does not fail readiness; it only switches
// the reported anchoring mode to simulated.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	status := h.monitor.Check(r.Context())

	response := ReadinessResponse{Status: "ready", Checks: status}
	if !status.Healthy {
		response.Status = "not_ready"
		httputil.WriteJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, response)
}

// StatusResponse is the response for the general health status endpoint.
type StatusResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Environment   string         `json:"environment"`
	Mode          string         `json:"mode"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Timestamp     string         `json:"timestamp"`
	Checks        monitor.Status `json:"checks"`
}

// HandleStatus returns general health status with version, uptime, the
// current anchoring mode and per-dependency probe results. The status string
// follows the probe aggregate; a down store or ledger is never reported as
// healthy.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := h.monitor.Check(r.Context())

	overall := "healthy"
	if !status.Healthy {
		overall = "unhealthy"
	}

	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        overall,
		Version:       Version,
		Environment:   h.environment,
		Mode:          status.Mode,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Checks:        status,
	})
}
