package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/scorarr/scorarr/internal/controllers"
	"github.com/sirupsen/logrus"
)

// RadarrWebhookPayload is the subset of Radarr's webhook body this handler
// needs. Unknown fields are ignored.
type RadarrWebhookPayload struct {
	EventType string `json:"eventType"`
	Movie     struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Year  int    `json:"year"`
	} `json:"movie"`
}

// WebhookHandler receives Radarr webhook callbacks and reconciles imports
type WebhookHandler struct {
	hookCtrl *controllers.HookController
	logger   *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(hookCtrl *controllers.HookController, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		hookCtrl: hookCtrl,
		logger:   logger,
	}
}

// ServeHTTP handles the webhook endpoint
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload RadarrWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.WithError(err).Error("Failed to decode webhook payload")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	switch payload.EventType {
	case "Test":
		h.logger.Info("Received Radarr webhook test")
		w.WriteHeader(http.StatusOK)
		return
	case "Download":
		// Radarr fires "Download" when a file is imported.
	default:
		h.logger.WithField("event_type", payload.EventType).Debug("Ignoring webhook event")
		w.WriteHeader(http.StatusOK)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"movie_id": payload.Movie.ID,
		"title":    payload.Movie.Title,
	}).Info("Received import webhook")

	if err := h.hookCtrl.HandleImport(r.Context(), payload.Movie.ID); err != nil {
		h.logger.WithError(err).WithField("movie_id", payload.Movie.ID).Error("Failed to reconcile imported movie")
		http.Error(w, "Reconciliation failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
