package radarr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ListTags fetches the tag registry
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	if err := c.doRequest(ctx, http.MethodGet, "/tag", nil, &tags); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// CreateTag creates a new tag with the given label
func (c *Client) CreateTag(ctx context.Context, label string) (*Tag, error) {
	var tag Tag
	body := map[string]string{"label": label}
	if err := c.doRequest(ctx, http.MethodPost, "/tag", body, &tag); err != nil {
		return nil, fmt.Errorf("failed to create tag %q: %w", label, err)
	}

	c.logger.WithFields(logrus.Fields{
		"tag_id": tag.ID,
		"label":  tag.Label,
	}).Info("Created tag")

	return &tag, nil
}

// AttachTag adds a tag to a movie. Attaching a tag the movie already carries
// is a no-op: no update request is issued.
//
// The movie record is fetched and written back as a raw document so fields
// this client does not model survive the round trip.
func (c *Client) AttachTag(ctx context.Context, movieID, tagID int64) error {
	var raw map[string]interface{}
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/movie/%d", movieID), nil, &raw); err != nil {
		return fmt.Errorf("failed to fetch movie %d for tagging: %w", movieID, err)
	}

	tags, _ := raw["tags"].([]interface{})
	for _, t := range tags {
		if id, ok := t.(float64); ok && int64(id) == tagID {
			c.logger.WithFields(logrus.Fields{
				"movie_id": movieID,
				"tag_id":   tagID,
			}).Debug("Tag already attached, skipping update")
			return nil
		}
	}

	raw["tags"] = append(tags, tagID)
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/movie/%d", movieID), raw, nil); err != nil {
		return fmt.Errorf("failed to attach tag %d to movie %d: %w", tagID, movieID, err)
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id": movieID,
		"tag_id":   tagID,
	}).Info("Attached tag")

	return nil
}
