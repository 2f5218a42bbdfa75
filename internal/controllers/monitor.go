package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/scorarr/scorarr/internal/models"
	"github.com/scorarr/scorarr/internal/services/radarr"
	"github.com/sirupsen/logrus"
)

// monitorLoop sweeps the download queue until told to stop, sleeping the
// download check interval between sweeps.
func (o *Orchestrator) monitorLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	o.logger.Debug("Download monitor started")

	for {
		select {
		case <-stop:
			o.logger.Debug("Download monitor stopped")
			return
		case <-ctx.Done():
			o.logger.Debug("Download monitor canceled")
			return
		case <-time.After(o.cfg.DownloadCheckInterval):
		}

		o.sweepDownloads(ctx)
	}
}

// sweepDownloads checks every in-flight item once. One item's error is
// isolated: it fails that item and the sweep moves on.
func (o *Orchestrator) sweepDownloads(ctx context.Context) {
	items := o.downloadSnapshot()
	if len(items) == 0 {
		return
	}

	o.logger.WithField("count", len(items)).Debug("Checking in-flight downloads")

	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		o.checkDownload(ctx, item)
	}
}

// checkDownload resolves one downloading item: completed on a new import
// event, failed on timeout or error, otherwise left in the queue.
func (o *Orchestrator) checkDownload(ctx context.Context, item *models.QueueItem) {
	history, err := o.catalog.GetHistory(ctx, item.ID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		o.removeDownload(item)
		o.fail(item, fmt.Sprintf("error while checking download: %v", err))
		return
	}

	imported := FindNewEvent(history, radarr.EventTypeImported, item.InitialHistoryIDs)
	if imported != nil {
		o.resolveImport(ctx, item, imported)
		return
	}

	if item.StartedAt.IsZero() {
		// Should have been stamped when the item entered downloading;
		// repair rather than crash the sweep.
		o.logger.WithFields(logrus.Fields{
			"movie_id": item.ID,
			"title":    item.Title,
		}).Warn("Download item missing start time, stamping now")
		item.StartedAt = time.Now()
	}

	if elapsed := time.Since(item.StartedAt); elapsed > o.cfg.DownloadTimeout {
		o.removeDownload(item)
		o.fail(item, fmt.Sprintf("download timed out after %s", elapsed.Round(time.Second)))
	}
}

// resolveImport compares the grab-time score against the imported file and
// commits the tagging decision.
func (o *Orchestrator) resolveImport(ctx context.Context, item *models.QueueItem, imported *radarr.HistoryEvent) {
	o.logger.WithFields(logrus.Fields{
		"movie_id": item.ID,
		"title":    item.Title,
		"release":  imported.SourceTitle,
	}).Info("Import detected")

	actual := imported.CustomFormatScore
	qualityLabel := imported.QualityName()

	file, err := o.catalog.GetCurrentFile(ctx, item.ID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		o.removeDownload(item)
		o.fail(item, fmt.Sprintf("error fetching imported file: %v", err))
		return
	}
	if file != nil {
		actual = file.CustomFormatScore
		qualityLabel = file.Quality.Quality.Name
	}

	o.removeDownload(item)

	if err := o.resolver.Resolve(ctx, item, item.Grabbed.Score, actual, qualityLabel); err != nil {
		o.fail(item, err.Error())
		return
	}
	o.complete(item)
}
