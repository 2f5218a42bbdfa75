package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/scorarr/scorarr/internal/config"
	"github.com/scorarr/scorarr/internal/services/notify"
	"github.com/scorarr/scorarr/internal/services/radarr"
	"github.com/sirupsen/logrus"
)

// fakeCatalog is an in-memory CatalogClient scripted per test
type fakeCatalog struct {
	mu      sync.Mutex
	movies  map[int64]*radarr.Movie
	tags    []radarr.Tag
	nextTag int64
	history map[int64][]radarr.HistoryEvent

	searchCalls []int64
	tagPutCalls int
	commandErr  error
	onSearch    func(movieID int64)
	historyErr  error
	nextEventID int64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		movies:      make(map[int64]*radarr.Movie),
		history:     make(map[int64][]radarr.HistoryEvent),
		nextTag:     1,
		nextEventID: 1000,
	}
}

func (f *fakeCatalog) addMovie(m radarr.Movie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movies[m.ID] = &m
}

func (f *fakeCatalog) addTag(label string) radarr.Tag {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag := radarr.Tag{ID: f.nextTag, Label: label}
	f.nextTag++
	f.tags = append(f.tags, tag)
	return tag
}

func (f *fakeCatalog) addEvent(movieID int64, eventType string, score int, qualityName string) radarr.HistoryEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := radarr.HistoryEvent{
		ID:                f.nextEventID,
		MovieID:           movieID,
		EventType:         eventType,
		CustomFormatScore: score,
		Date:              time.Now(),
		Quality:           radarr.Quality{Quality: radarr.QualityDefinition{Name: qualityName}},
	}
	f.nextEventID++
	f.history[movieID] = append(f.history[movieID], ev)
	return ev
}

func (f *fakeCatalog) tagIDByLabel(label string) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tag := range f.tags {
		if tag.Label == label {
			return tag.ID, true
		}
	}
	return 0, false
}

func (f *fakeCatalog) movieTags(movieID int64) []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	movie := f.movies[movieID]
	out := make([]int64, len(movie.Tags))
	copy(out, movie.Tags)
	return out
}

func (f *fakeCatalog) ListMovies(ctx context.Context) ([]radarr.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]radarr.Movie, 0, len(f.movies))
	for _, m := range f.movies {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeCatalog) GetMovie(ctx context.Context, movieID int64) (*radarr.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := *f.movies[movieID]
	return &m, nil
}

func (f *fakeCatalog) GetCurrentFile(ctx context.Context, movieID int64) (*radarr.MovieFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.movies[movieID]
	if !m.HasFile || m.MovieFile == nil {
		return nil, nil
	}
	file := *m.MovieFile
	return &file, nil
}

func (f *fakeCatalog) GetHistory(ctx context.Context, movieID int64) ([]radarr.HistoryEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	events := f.history[movieID]
	out := make([]radarr.HistoryEvent, len(events))
	copy(out, events)
	return out, nil
}

func (f *fakeCatalog) TriggerSearch(ctx context.Context, movieID int64) (*radarr.Command, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, movieID)
	hook := f.onSearch
	f.mu.Unlock()

	if hook != nil {
		hook(movieID)
	}
	return &radarr.Command{ID: movieID, Name: "MoviesSearch", Status: radarr.CommandStatusStarted}, nil
}

func (f *fakeCatalog) WaitForCommand(ctx context.Context, commandID int64, timeout, pollInterval time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commandErr
}

func (f *fakeCatalog) ListTags(ctx context.Context) ([]radarr.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]radarr.Tag, len(f.tags))
	copy(out, f.tags)
	return out, nil
}

func (f *fakeCatalog) CreateTag(ctx context.Context, label string) (*radarr.Tag, error) {
	tag := f.addTag(label)
	return &tag, nil
}

func (f *fakeCatalog) AttachTag(ctx context.Context, movieID, tagID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	movie := f.movies[movieID]
	for _, existing := range movie.Tags {
		if existing == tagID {
			return nil
		}
	}
	movie.Tags = append(movie.Tags, tagID)
	f.tagPutCalls++
	return nil
}

// fakeNotifier records every mismatch it is asked to deliver
type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Mismatch
	err  error
}

func (f *fakeNotifier) SendMismatch(ctx context.Context, m notify.Mismatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// testConfig returns a configuration with intervals short enough for tests
func testConfig() *config.Config {
	return &config.Config{
		RadarrURL:    "http://localhost:7878",
		RadarrAPIKey: "test",

		MaxOverScore:  100,
		MaxUnderScore: 0,

		TaggingEnabled:   true,
		SuccessTagLabel:  "scorarr-ok",
		MismatchTagLabel: "scorarr-mismatch",

		MaxConcurrentDownloads: 3,
		SearchInterval:         5 * time.Millisecond,
		DownloadCheckInterval:  5 * time.Millisecond,
		DownloadTimeout:        time.Minute,
		CommandTimeout:         time.Second,
		CommandPollInterval:    time.Millisecond,
		GrabWaitTimeout:        100 * time.Millisecond,
		HistoryPollInterval:    5 * time.Millisecond,

		LogLevel: "debug",
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
