package controllers

import (
	"context"
	"fmt"

	"github.com/scorarr/scorarr/internal/config"
	"github.com/scorarr/scorarr/internal/models"
	"github.com/scorarr/scorarr/internal/services/radarr"
	"github.com/sirupsen/logrus"
)

// Checker reconciles a single movie end to end without any queueing
type Checker struct {
	catalog  CatalogClient
	resolver Resolver
	cfg      *config.Config
	logger   *logrus.Logger
}

// NewChecker creates a new single-movie checker
func NewChecker(catalog CatalogClient, resolver Resolver, cfg *config.Config, logger *logrus.Logger) *Checker {
	return &Checker{
		catalog:  catalog,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
	}
}

// CheckMovie searches one movie, waits for grab and import, and applies the
// tagging decision. In dry-run configurations the search is skipped and the
// existing file is compared against history.
func (c *Checker) CheckMovie(ctx context.Context, movieID int64) error {
	movie, err := c.catalog.GetMovie(ctx, movieID)
	if err != nil {
		return err
	}

	history, err := c.catalog.GetHistory(ctx, movieID)
	if err != nil {
		return err
	}

	item := &models.QueueItem{
		ID:                movie.ID,
		Title:             movie.Title,
		Year:              movie.Year,
		HasFile:           movie.HasFile,
		Status:            models.StatusPending,
		InitialHistoryIDs: EventIDs(history),
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id": movie.ID,
		"title":    movie.Title,
	}).Info("Checking movie")

	if c.cfg.DryRun {
		return resolveFromHistory(ctx, c.catalog, c.resolver, c.logger, item)
	}

	cmd, err := c.catalog.TriggerSearch(ctx, movieID)
	if err != nil {
		return fmt.Errorf("search command failed: %w", err)
	}
	if err := c.catalog.WaitForCommand(ctx, cmd.ID, c.cfg.CommandTimeout, c.cfg.CommandPollInterval); err != nil {
		return fmt.Errorf("search command failed: %w", err)
	}

	fetch := func(ctx context.Context) ([]radarr.HistoryEvent, error) {
		return c.catalog.GetHistory(ctx, movieID)
	}

	grab, err := WaitForNewEvent(ctx, fetch, radarr.EventTypeGrabbed, WaitOptions{
		Timeout:      c.cfg.GrabWaitTimeout,
		PollInterval: c.cfg.HistoryPollInterval,
		KnownIDs:     item.InitialHistoryIDs,
	})
	if err != nil {
		return fmt.Errorf("error waiting for grab event: %w", err)
	}
	if grab == nil {
		c.logger.WithField("title", item.Title).Debug("No new grab event, falling back to existing history")
		return resolveFromHistory(ctx, c.catalog, c.resolver, c.logger, item)
	}

	item.Grabbed = &models.GrabbedRelease{
		EventID:     grab.ID,
		SourceTitle: grab.SourceTitle,
		Quality:     grab.QualityName(),
		Score:       grab.CustomFormatScore,
		Date:        grab.Date,
	}

	c.logger.WithFields(logrus.Fields{
		"title":   item.Title,
		"release": grab.SourceTitle,
		"score":   grab.CustomFormatScore,
	}).Info("Release grabbed, waiting for import")

	imported, err := WaitForNewEvent(ctx, fetch, radarr.EventTypeImported, WaitOptions{
		Timeout:      c.cfg.DownloadTimeout,
		PollInterval: c.cfg.DownloadCheckInterval,
		KnownIDs:     item.InitialHistoryIDs,
	})
	if err != nil {
		return fmt.Errorf("error waiting for import event: %w", err)
	}
	if imported == nil {
		return fmt.Errorf("download timed out after %s", c.cfg.DownloadTimeout)
	}

	actual := imported.CustomFormatScore
	qualityLabel := imported.QualityName()
	if file, err := c.catalog.GetCurrentFile(ctx, movieID); err == nil && file != nil {
		actual = file.CustomFormatScore
		qualityLabel = file.Quality.Quality.Name
	}

	return c.resolver.Resolve(ctx, item, item.Grabbed.Score, actual, qualityLabel)
}
