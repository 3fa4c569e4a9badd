package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"stocksentiment/internal/config"
	"stocksentiment/internal/infrastructure"
	"stocksentiment/internal/operations"
	"stocksentiment/pkg/contracts"
)

// HealthStatus is the body of GET /api/health
type HealthStatus struct {
	Status           string            `json:"status"`
	Version          string            `json:"version"`
	Uptime           string            `json:"uptime"`
	OperationRunning bool              `json:"operation_running"`
	Checks           map[string]string `json:"checks"`
	Timestamp        time.Time         `json:"timestamp"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	paths   *config.Paths
	manager *operations.Manager
	started time.Time
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(paths *config.Paths, manager *operations.Manager, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		paths:   paths,
		manager: manager,
		started: time.Now(),
		logger:  infrastructure.WithComponent(logger, "health_handler"),
	}
}

// HealthCheck handles GET /api/health. A missing data directory degrades
// the status but still answers 200.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:           "ok",
		Version:          contracts.Version,
		Uptime:           time.Since(h.started).Round(time.Second).String(),
		OperationRunning: h.manager.Running(),
		Checks:           make(map[string]string),
		Timestamp:        time.Now().UTC(),
	}

	for name, dir := range map[string]string{
		"data_dir":    h.paths.DataDir,
		"corpora_dir": h.paths.CorporaDir,
	} {
		if config.FileExists(dir) {
			status.Checks[name] = "ok"
			continue
		}
		status.Checks[name] = "missing"
		status.Status = "degraded"
	}

	if status.Status != "ok" {
		h.logger.WarnContext(r.Context(), "health check degraded", slog.Any("checks", status.Checks))
	}
	render.JSON(w, r, status)
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}
