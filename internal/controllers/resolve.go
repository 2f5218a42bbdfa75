package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scorarr/scorarr/internal/config"
	"github.com/scorarr/scorarr/internal/models"
	"github.com/scorarr/scorarr/internal/services/notify"
	"github.com/scorarr/scorarr/internal/services/radarr"
	"github.com/scorarr/scorarr/internal/utils"
	"github.com/sirupsen/logrus"
)

var errNoMovieFile = errors.New("no movie file found")

// Resolver applies the terminal tagging decision for a reconciled item. The
// dry-run implementation performs the same comparison and logging but no-ops
// every mutating call.
type Resolver interface {
	// Resolve compares expected against actual and tags/notifies accordingly.
	Resolve(ctx context.Context, item *models.QueueItem, expected, actual int, qualityLabel string) error

	// MarkAcceptable tags an item as acceptable without a comparison, used
	// when no grab history exists at all.
	MarkAcceptable(ctx context.Context, item *models.QueueItem) error
}

// NewResolver returns the live resolver, or the dry-run variant when the
// configuration requests a dry run.
func NewResolver(catalog CatalogClient, notifier Notifier, cfg *config.Config, logger *logrus.Logger) Resolver {
	if cfg.DryRun {
		return &DryRunResolver{cfg: cfg, logger: logger}
	}
	return &LiveResolver{
		catalog:  catalog,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// LiveResolver tags movies and sends notifications against the real catalog
type LiveResolver struct {
	catalog  CatalogClient
	notifier Notifier
	cfg      *config.Config
	logger   *logrus.Logger
}

// Resolve runs the comparison and commits the tagging decision. A
// notification delivery failure is logged and swallowed; the tagging outcome
// has already been committed by then.
func (r *LiveResolver) Resolve(ctx context.Context, item *models.QueueItem, expected, actual int, qualityLabel string) error {
	cmp := utils.CompareScores(expected, actual, r.cfg.MaxOverScore, r.cfg.MaxUnderScore)

	fields := logrus.Fields{
		"movie_id":   item.ID,
		"title":      item.Title,
		"expected":   cmp.Expected,
		"actual":     cmp.Actual,
		"difference": cmp.Difference,
	}

	if cmp.Acceptable {
		r.logger.WithFields(fields).Info("Score within acceptable band")
		if r.cfg.TaggingEnabled {
			return r.applyTag(ctx, item, r.cfg.SuccessTagLabel)
		}
		return nil
	}

	r.logger.WithFields(fields).Warn("Score mismatch detected")

	if r.cfg.TaggingEnabled {
		if err := r.applyTag(ctx, item, r.cfg.MismatchTagLabel); err != nil {
			return err
		}
	}

	err := r.notifier.SendMismatch(ctx, notify.Mismatch{
		Title:         item.Title,
		Year:          item.Year,
		ExpectedScore: cmp.Expected,
		ActualScore:   cmp.Actual,
		Difference:    cmp.Difference,
		MaxOverScore:  r.cfg.MaxOverScore,
		QualityLabel:  qualityLabel,
	})
	if err != nil {
		r.logger.WithError(err).WithField("title", item.Title).Warn("Failed to send mismatch notification")
	}

	return nil
}

// MarkAcceptable applies the success tag without running a comparison
func (r *LiveResolver) MarkAcceptable(ctx context.Context, item *models.QueueItem) error {
	r.logger.WithFields(logrus.Fields{
		"movie_id": item.ID,
		"title":    item.Title,
	}).Info("Marking as acceptable without comparison")

	if !r.cfg.TaggingEnabled {
		return nil
	}
	return r.applyTag(ctx, item, r.cfg.SuccessTagLabel)
}

func (r *LiveResolver) applyTag(ctx context.Context, item *models.QueueItem, label string) error {
	tag, err := r.ensureTag(ctx, label)
	if err != nil {
		return err
	}
	return r.catalog.AttachTag(ctx, item.ID, tag.ID)
}

// ensureTag finds the tag by label (case-insensitive) or creates it
func (r *LiveResolver) ensureTag(ctx context.Context, label string) (*radarr.Tag, error) {
	tags, err := r.catalog.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	for i := range tags {
		if strings.EqualFold(tags[i].Label, label) {
			return &tags[i], nil
		}
	}

	return r.catalog.CreateTag(ctx, label)
}

// DryRunResolver logs the comparison a live run would make and changes nothing
type DryRunResolver struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// Resolve logs the diagnostic comparison without tagging or notifying
func (r *DryRunResolver) Resolve(ctx context.Context, item *models.QueueItem, expected, actual int, qualityLabel string) error {
	cmp := utils.CompareScores(expected, actual, r.cfg.MaxOverScore, r.cfg.MaxUnderScore)

	r.logger.WithFields(logrus.Fields{
		"movie_id":   item.ID,
		"title":      item.Title,
		"expected":   cmp.Expected,
		"actual":     cmp.Actual,
		"difference": cmp.Difference,
		"acceptable": cmp.Acceptable,
		"quality":    qualityLabel,
		"dry_run":    true,
	}).Info("Score comparison")

	return nil
}

// MarkAcceptable logs the decision a live run would make
func (r *DryRunResolver) MarkAcceptable(ctx context.Context, item *models.QueueItem) error {
	r.logger.WithFields(logrus.Fields{
		"movie_id": item.ID,
		"title":    item.Title,
		"dry_run":  true,
	}).Info("Would mark as acceptable without comparison")
	return nil
}

// resolveFromHistory compares the movie's current file against the most
// recent pre-existing grab event. Shared by the dispatch fallback, the
// single-shot check, and the import hook.
func resolveFromHistory(ctx context.Context, catalog CatalogClient, resolver Resolver, logger *logrus.Logger, item *models.QueueItem) error {
	history, err := catalog.GetHistory(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	SortEventsByDateDesc(history)

	prior := FindEventByType(history, radarr.EventTypeGrabbed)
	if prior == nil {
		logger.WithFields(logrus.Fields{
			"movie_id": item.ID,
			"title":    item.Title,
		}).Info("No grab event in history, treating as acceptable")
		return resolver.MarkAcceptable(ctx, item)
	}

	if !item.HasFile {
		return errNoMovieFile
	}

	file, err := catalog.GetCurrentFile(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch current file: %w", err)
	}
	if file == nil {
		return errNoMovieFile
	}

	return resolver.Resolve(ctx, item, prior.CustomFormatScore, file.CustomFormatScore, file.Quality.Quality.Name)
}
