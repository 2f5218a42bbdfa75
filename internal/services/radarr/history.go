package radarr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// GetHistory fetches all history events for a movie. Radarr returns the list
// in its own order; callers needing chronological guarantees must sort.
func (c *Client) GetHistory(ctx context.Context, movieID int64) ([]HistoryEvent, error) {
	var events []HistoryEvent
	path := fmt.Sprintf("/history/movie?movieId=%d", movieID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &events); err != nil {
		return nil, fmt.Errorf("failed to get history for movie %d: %w", movieID, err)
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id": movieID,
		"count":    len(events),
	}).Debug("Fetched movie history")

	return events, nil
}
