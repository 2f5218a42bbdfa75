package radarr

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// TriggerSearch queues a MoviesSearch command for the given movie
func (c *Client) TriggerSearch(ctx context.Context, movieID int64) (*Command, error) {
	var cmd Command
	body := map[string]interface{}{
		"name":     "MoviesSearch",
		"movieIds": []int64{movieID},
	}
	if err := c.doRequest(ctx, http.MethodPost, "/command", body, &cmd); err != nil {
		return nil, fmt.Errorf("failed to trigger search for movie %d: %w", movieID, err)
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id":   movieID,
		"command_id": cmd.ID,
	}).Info("Triggered movie search")

	return &cmd, nil
}

// GetCommand fetches the current state of a command
func (c *Client) GetCommand(ctx context.Context, commandID int64) (*Command, error) {
	var cmd Command
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/command/%d", commandID), nil, &cmd); err != nil {
		return nil, fmt.Errorf("failed to get command %d: %w", commandID, err)
	}
	return &cmd, nil
}

// WaitForCommand polls a command until it completes, fails, or the timeout
// elapses. A failed or aborted command is returned as an error carrying the
// command's own message when Radarr provides one.
func (c *Client) WaitForCommand(ctx context.Context, commandID int64, timeout, pollInterval time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		cmd, err := c.GetCommand(ctx, commandID)
		if err != nil {
			return err
		}

		switch cmd.Status {
		case CommandStatusCompleted:
			c.logger.WithField("command_id", commandID).Debug("Command completed")
			return nil
		case CommandStatusFailed, CommandStatusAborted:
			if cmd.Message != "" {
				return fmt.Errorf("command %d %s: %s", commandID, cmd.Status, cmd.Message)
			}
			return fmt.Errorf("command %d %s", commandID, cmd.Status)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("command %d timed out after %s", commandID, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
