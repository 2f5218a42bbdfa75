package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/scorarr/scorarr/internal/models"
	"github.com/sirupsen/logrus"
)

// RunReporter exposes the most recent sweep summary
type RunReporter interface {
	LastRun() (*models.RunSummary, time.Time)
}

// StatusHandler reports the outcome of the last reconciliation sweep
type StatusHandler struct {
	reporter RunReporter
	logger   *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(reporter RunReporter, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		reporter: reporter,
		logger:   logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	LastRunAt *time.Time         `json:"last_run_at,omitempty"`
	LastRun   *models.RunSummary `json:"last_run,omitempty"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := StatusResponse{}
	if summary, at := h.reporter.LastRun(); summary != nil {
		response.LastRun = summary
		response.LastRunAt = &at
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode status response")
	}
}
