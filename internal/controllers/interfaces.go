package controllers

import (
	"context"
	"time"

	"github.com/scorarr/scorarr/internal/services/notify"
	"github.com/scorarr/scorarr/internal/services/radarr"
)

// CatalogClient is the slice of the Radarr API the controllers consume. The
// concrete client carries its own retry policy; callers only bound their waits.
type CatalogClient interface {
	ListMovies(ctx context.Context) ([]radarr.Movie, error)
	GetMovie(ctx context.Context, movieID int64) (*radarr.Movie, error)
	GetCurrentFile(ctx context.Context, movieID int64) (*radarr.MovieFile, error)
	GetHistory(ctx context.Context, movieID int64) ([]radarr.HistoryEvent, error)
	TriggerSearch(ctx context.Context, movieID int64) (*radarr.Command, error)
	WaitForCommand(ctx context.Context, commandID int64, timeout, pollInterval time.Duration) error
	ListTags(ctx context.Context) ([]radarr.Tag, error)
	CreateTag(ctx context.Context, label string) (*radarr.Tag, error)
	AttachTag(ctx context.Context, movieID, tagID int64) error
}

// Notifier delivers mismatch notifications
type Notifier interface {
	SendMismatch(ctx context.Context, m notify.Mismatch) error
}
