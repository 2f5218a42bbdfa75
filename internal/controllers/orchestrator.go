package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scorarr/scorarr/internal/config"
	"github.com/scorarr/scorarr/internal/models"
	"github.com/scorarr/scorarr/internal/services/radarr"
	"github.com/sirupsen/logrus"
)

// Orchestrator drives eligible movies through the search → grab → import
// pipeline. It owns two queues: the FIFO search queue drained by the dispatch
// loop, and the download queue swept by the monitor loop. The queues are the
// only synchronization point between the two loops; an item is exclusively
// owned by whichever loop currently holds it.
type Orchestrator struct {
	catalog  CatalogClient
	resolver Resolver
	cfg      *config.Config
	logger   *logrus.Logger

	mu            sync.Mutex
	searchQueue   []*models.QueueItem
	downloadQueue []*models.QueueItem
	completed     []*models.QueueItem

	running   atomic.Bool
	cancelMu  sync.Mutex
	cancelRun context.CancelFunc
}

// NewOrchestrator creates a new queue orchestrator
func NewOrchestrator(catalog CatalogClient, resolver Resolver, cfg *config.Config, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		catalog:  catalog,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
	}
}

// LoadEligibleItems fetches the catalog, filters to monitored movies carrying
// neither reconciliation tag, and enqueues each with a snapshot of its
// current history IDs. Returns the number enqueued. Movies added to Radarr
// after this call are invisible to the run.
func (o *Orchestrator) LoadEligibleItems(ctx context.Context, limit int) (int, error) {
	movies, err := o.catalog.ListMovies(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list movies: %w", err)
	}

	tags, err := o.catalog.ListTags(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tags: %w", err)
	}

	skipTags := make(map[int64]struct{})
	for _, tag := range tags {
		if strings.EqualFold(tag.Label, o.cfg.SuccessTagLabel) ||
			strings.EqualFold(tag.Label, o.cfg.MismatchTagLabel) {
			skipTags[tag.ID] = struct{}{}
		}
	}

	count := 0
	for i := range movies {
		movie := &movies[i]
		if !movie.Monitored || hasAnyTag(movie.Tags, skipTags) {
			continue
		}
		if limit > 0 && count >= limit {
			break
		}

		history, err := o.catalog.GetHistory(ctx, movie.ID)
		if err != nil {
			o.logger.WithError(err).WithFields(logrus.Fields{
				"movie_id": movie.ID,
				"title":    movie.Title,
			}).Warn("Failed to snapshot history, skipping movie")
			continue
		}

		o.pushSearch(&models.QueueItem{
			ID:                movie.ID,
			Title:             movie.Title,
			Year:              movie.Year,
			HasFile:           movie.HasFile,
			Status:            models.StatusPending,
			InitialHistoryIDs: EventIDs(history),
		})
		count++

		o.logger.WithFields(logrus.Fields{
			"movie_id": movie.ID,
			"title":    movie.Title,
			"history":  len(history),
		}).Debug("Enqueued movie for reconciliation")
	}

	o.logger.WithField("count", count).Info("Loaded eligible movies")
	return count, nil
}

// Run drains the search queue through the dispatch loop while the monitor
// loop resolves in-flight downloads, then waits for the download queue to
// empty and returns the run summary. A second concurrent call logs and
// returns nil instead of starting another run.
func (o *Orchestrator) Run(ctx context.Context) *models.RunSummary {
	if !o.running.CompareAndSwap(false, true) {
		o.logger.Warn("Run already in progress, ignoring")
		return nil
	}
	defer o.running.Store(false)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.setCancel(cancel)
	defer o.setCancel(nil)

	startedAt := time.Now()
	o.logger.WithFields(logrus.Fields{
		"queued":  o.searchLen(),
		"dry_run": o.cfg.DryRun,
	}).Info("Starting reconciliation run")

	stopMonitor := make(chan struct{})
	monitorDone := make(chan struct{})
	go o.monitorLoop(runCtx, stopMonitor, monitorDone)

	o.dispatchLoop(runCtx)

	// Search queue drained (or shutdown requested): wait for the monitor
	// loop to resolve every in-flight download.
	for runCtx.Err() == nil && o.downloadLen() > 0 {
		o.sleep(runCtx, o.cfg.DownloadCheckInterval)
	}

	close(stopMonitor)
	<-monitorDone

	summary := o.buildSummary(startedAt)
	o.logSummary(summary)
	return summary
}

// Shutdown requests cooperative early termination. In-flight steps finish;
// loops exit at their next iteration boundary. Items that have not reached a
// terminal state are left unresolved.
func (o *Orchestrator) Shutdown() {
	if !o.running.Load() {
		return
	}
	o.logger.Info("Shutdown requested, finishing in-flight work")

	o.cancelMu.Lock()
	defer o.cancelMu.Unlock()
	if o.cancelRun != nil {
		o.cancelRun()
	}
}

// dispatchLoop drains the search queue strictly FIFO. While the download
// queue sits at the concurrency cap no item is dequeued; each dispatch is
// followed by one search interval to pace outbound search commands.
func (o *Orchestrator) dispatchLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if o.searchLen() == 0 {
			return
		}

		if o.downloadLen() >= o.cfg.MaxConcurrentDownloads {
			o.logger.WithField("cap", o.cfg.MaxConcurrentDownloads).Debug("Download queue at capacity, waiting")
			o.sleep(ctx, o.cfg.SearchInterval)
			continue
		}

		item := o.popSearch()
		if item == nil {
			return
		}

		if o.cfg.DryRun {
			o.dryRunItem(ctx, item)
		} else {
			o.dispatch(ctx, item)
		}

		o.sleep(ctx, o.cfg.SearchInterval)
	}
}

// dispatch triggers a search for one item and promotes it to the download
// queue once a new grab event appears. When no new grab shows up within the
// grab window, the item is resolved against its pre-existing history instead.
func (o *Orchestrator) dispatch(ctx context.Context, item *models.QueueItem) {
	item.Status = models.StatusSearching
	o.logger.WithFields(logrus.Fields{
		"movie_id": item.ID,
		"title":    item.Title,
	}).Info("Searching")

	cmd, err := o.catalog.TriggerSearch(ctx, item.ID)
	if err != nil {
		o.fail(item, fmt.Sprintf("search command failed: %v", err))
		return
	}

	if err := o.catalog.WaitForCommand(ctx, cmd.ID, o.cfg.CommandTimeout, o.cfg.CommandPollInterval); err != nil {
		if ctx.Err() != nil {
			o.abandon(item)
			return
		}
		o.fail(item, fmt.Sprintf("search command failed: %v", err))
		return
	}

	fetch := func(ctx context.Context) ([]radarr.HistoryEvent, error) {
		return o.catalog.GetHistory(ctx, item.ID)
	}

	grab, err := WaitForNewEvent(ctx, fetch, radarr.EventTypeGrabbed, WaitOptions{
		Timeout:      o.cfg.GrabWaitTimeout,
		PollInterval: o.cfg.HistoryPollInterval,
		KnownIDs:     item.InitialHistoryIDs,
	})
	if err != nil {
		if ctx.Err() != nil {
			o.abandon(item)
			return
		}
		o.fail(item, fmt.Sprintf("error waiting for grab event: %v", err))
		return
	}

	if grab != nil {
		item.Grabbed = &models.GrabbedRelease{
			EventID:     grab.ID,
			SourceTitle: grab.SourceTitle,
			Quality:     grab.QualityName(),
			Score:       grab.CustomFormatScore,
			Date:        grab.Date,
		}
		item.StartedAt = time.Now()
		item.Status = models.StatusDownloading
		o.pushDownload(item)

		o.logger.WithFields(logrus.Fields{
			"movie_id": item.ID,
			"title":    item.Title,
			"release":  grab.SourceTitle,
			"score":    grab.CustomFormatScore,
		}).Info("Release grabbed, monitoring download")
		return
	}

	// No new grab: the release may repeat something already in history, or
	// nothing matched. Compare against what is already there.
	o.logger.WithFields(logrus.Fields{
		"movie_id": item.ID,
		"title":    item.Title,
	}).Debug("No new grab event, falling back to existing history")

	if err := resolveFromHistory(ctx, o.catalog, o.resolver, o.logger, item); err != nil {
		o.fail(item, err.Error())
		return
	}
	o.complete(item)
}

// dryRunItem performs the fetch-and-compare work of a live run without
// searching, tagging, or notifying; the item always completes.
func (o *Orchestrator) dryRunItem(ctx context.Context, item *models.QueueItem) {
	item.Status = models.StatusSearching

	err := resolveFromHistory(ctx, o.catalog, o.resolver, o.logger, item)
	if errors.Is(err, errNoMovieFile) {
		o.logger.WithFields(logrus.Fields{
			"movie_id": item.ID,
			"title":    item.Title,
			"dry_run":  true,
		}).Info("Movie has no file to compare")
		o.complete(item)
		return
	}
	if err != nil {
		o.fail(item, err.Error())
		return
	}
	o.complete(item)
}

// fail moves an item to the completed list in the failed state
func (o *Orchestrator) fail(item *models.QueueItem, reason string) {
	item.Status = models.StatusFailed
	item.Error = reason

	o.mu.Lock()
	o.completed = append(o.completed, item)
	o.mu.Unlock()

	o.logger.WithFields(logrus.Fields{
		"movie_id": item.ID,
		"title":    item.Title,
		"reason":   reason,
	}).Warn("Item failed")
}

// complete moves an item to the completed list in the completed state
func (o *Orchestrator) complete(item *models.QueueItem) {
	item.Status = models.StatusCompleted

	o.mu.Lock()
	o.completed = append(o.completed, item)
	o.mu.Unlock()

	o.logger.WithFields(logrus.Fields{
		"movie_id": item.ID,
		"title":    item.Title,
	}).Info("Item completed")
}

// abandon drops an item without a terminal state when shutdown interrupted
// its current step; its absence from the summary is expected.
func (o *Orchestrator) abandon(item *models.QueueItem) {
	o.logger.WithFields(logrus.Fields{
		"movie_id": item.ID,
		"title":    item.Title,
	}).Debug("Leaving item unresolved after shutdown request")
}

func (o *Orchestrator) buildSummary(startedAt time.Time) *models.RunSummary {
	o.mu.Lock()
	defer o.mu.Unlock()

	summary := &models.RunSummary{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	for _, item := range o.completed {
		if item.Status == models.StatusFailed {
			summary.Failed++
			summary.Failures = append(summary.Failures, models.ItemFailure{
				ID:     item.ID,
				Title:  item.Title,
				Reason: item.Error,
			})
		} else {
			summary.Completed++
		}
	}
	return summary
}

func (o *Orchestrator) logSummary(summary *models.RunSummary) {
	o.logger.WithFields(logrus.Fields{
		"completed": summary.Completed,
		"failed":    summary.Failed,
		"duration":  summary.FinishedAt.Sub(summary.StartedAt).Round(time.Second).String(),
	}).Info("Reconciliation run finished")

	for _, failure := range summary.Failures {
		o.logger.WithFields(logrus.Fields{
			"movie_id": failure.ID,
			"title":    failure.Title,
			"reason":   failure.Reason,
		}).Warn("Failed item")
	}
}

// Queue accessors. Push/pop/iterate are guarded: the monitor loop iterates a
// snapshot of the download queue while the dispatch loop may append to it.

func (o *Orchestrator) pushSearch(item *models.QueueItem) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.searchQueue = append(o.searchQueue, item)
}

func (o *Orchestrator) popSearch() *models.QueueItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.searchQueue) == 0 {
		return nil
	}
	item := o.searchQueue[0]
	o.searchQueue = o.searchQueue[1:]
	return item
}

func (o *Orchestrator) searchLen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.searchQueue)
}

func (o *Orchestrator) pushDownload(item *models.QueueItem) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.downloadQueue = append(o.downloadQueue, item)
}

func (o *Orchestrator) removeDownload(item *models.QueueItem) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, queued := range o.downloadQueue {
		if queued == item {
			o.downloadQueue = append(o.downloadQueue[:i], o.downloadQueue[i+1:]...)
			return
		}
	}
}

func (o *Orchestrator) downloadLen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.downloadQueue)
}

func (o *Orchestrator) downloadSnapshot() []*models.QueueItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	snapshot := make([]*models.QueueItem, len(o.downloadQueue))
	copy(snapshot, o.downloadQueue)
	return snapshot
}

func (o *Orchestrator) setCancel(cancel context.CancelFunc) {
	o.cancelMu.Lock()
	defer o.cancelMu.Unlock()
	o.cancelRun = cancel
}

// sleep waits for the duration or until the context is canceled
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func hasAnyTag(tags []int64, want map[int64]struct{}) bool {
	for _, tag := range tags {
		if _, ok := want[tag]; ok {
			return true
		}
	}
	return false
}
