package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scorarr/scorarr/internal/config"
	"github.com/sirupsen/logrus"
)

// Mismatch carries the details of a score mismatch for delivery
type Mismatch struct {
	Title         string `json:"title"`
	Year          int    `json:"year"`
	ExpectedScore int    `json:"expected_score"`
	ActualScore   int    `json:"actual_score"`
	Difference    int    `json:"difference"`
	MaxOverScore  int    `json:"max_over_score"`
	QualityLabel  string `json:"quality_label"`
}

// WebhookNotifier posts mismatch notifications to a configured webhook URL.
// An empty URL disables delivery entirely.
type WebhookNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(cfg *config.Config, logger *logrus.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// SendMismatch delivers a mismatch notification. Callers treat delivery as
// fire-and-forget; an error here never changes a tagging decision.
func (n *WebhookNotifier) SendMismatch(ctx context.Context, m Mismatch) error {
	if n.webhookURL == "" {
		n.logger.Debug("No webhook URL configured, skipping notification")
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event":    "score_mismatch",
		"mismatch": m,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	n.logger.WithFields(logrus.Fields{
		"title":      m.Title,
		"difference": m.Difference,
	}).Info("Mismatch notification sent")

	return nil
}
