package controllers

import (
	"context"

	"github.com/scorarr/scorarr/internal/models"
	"github.com/sirupsen/logrus"
)

// HookController reconciles a movie reactively when Radarr reports an import
// through its webhook. It reuses the same comparison and tagging primitives
// as the batch orchestrator but has no queueing.
type HookController struct {
	catalog  CatalogClient
	resolver Resolver
	logger   *logrus.Logger
}

// NewHookController creates a new import hook controller
func NewHookController(catalog CatalogClient, resolver Resolver, logger *logrus.Logger) *HookController {
	return &HookController{
		catalog:  catalog,
		resolver: resolver,
		logger:   logger,
	}
}

// HandleImport compares the freshly imported file against the most recent
// grab event in the movie's history and applies the tagging decision.
func (h *HookController) HandleImport(ctx context.Context, movieID int64) error {
	movie, err := h.catalog.GetMovie(ctx, movieID)
	if err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"movie_id": movie.ID,
		"title":    movie.Title,
	}).Info("Reconciling imported movie")

	item := &models.QueueItem{
		ID:      movie.ID,
		Title:   movie.Title,
		Year:    movie.Year,
		HasFile: movie.HasFile,
	}

	return resolveFromHistory(ctx, h.catalog, h.resolver, h.logger, item)
}
