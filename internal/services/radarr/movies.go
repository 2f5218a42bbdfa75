package radarr

import (
	"context"
	"fmt"
	"net/http"
)

// ListMovies fetches the full movie catalog
func (c *Client) ListMovies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	if err := c.doRequest(ctx, http.MethodGet, "/movie", nil, &movies); err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	c.logger.WithField("count", len(movies)).Debug("Fetched movie catalog")
	return movies, nil
}

// GetMovie fetches a single movie by ID
func (c *Client) GetMovie(ctx context.Context, movieID int64) (*Movie, error) {
	var movie Movie
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/movie/%d", movieID), nil, &movie); err != nil {
		return nil, fmt.Errorf("failed to get movie %d: %w", movieID, err)
	}
	return &movie, nil
}

// GetCurrentFile returns the movie's currently imported file, or nil when the
// movie has no file on disk.
func (c *Client) GetCurrentFile(ctx context.Context, movieID int64) (*MovieFile, error) {
	movie, err := c.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if !movie.HasFile || movie.MovieFile == nil {
		return nil, nil
	}
	return movie.MovieFile, nil
}
