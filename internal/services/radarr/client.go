package radarr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/scorarr/scorarr/internal/config"
	"github.com/sirupsen/logrus"
)

const apiBase = "/api/v3"

// Client handles communication with the Radarr v3 API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Radarr API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.RadarrURL == "" {
		return nil, fmt.Errorf("radarr URL is required")
	}
	if cfg.RadarrAPIKey == "" {
		return nil, fmt.Errorf("radarr API key is required")
	}

	return &Client{
		baseURL: cfg.RadarrURL,
		apiKey:  cfg.RadarrAPIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// doRequest performs an authenticated HTTP request against the Radarr API.
// Network errors and 5xx responses are retried with exponential backoff;
// every other non-2xx status fails immediately.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var jsonData []byte
	if body != nil {
		var err error
		jsonData, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + apiBase + path
	c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    fullURL,
	}).Debug("Making Radarr API request")

	attempt := func() error {
		var reqBody io.Reader
		if jsonData != nil {
			reqBody = bytes.NewReader(jsonData)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Api-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("radarr API returned status %d: %s", resp.StatusCode, string(bodyBytes))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("radarr API returned status %d: %s", resp.StatusCode, string(bodyBytes)))
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), 3), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return err
	}
	return nil
}

func newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	return bo
}
