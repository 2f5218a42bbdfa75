package radarr

import "time"

// History event types emitted by Radarr. Only grabbed and imported are acted
// on; everything else in a movie's history is ignored.
const (
	EventTypeGrabbed  = "grabbed"
	EventTypeImported = "downloadFolderImported"
)

// Command states reported by the Radarr command API.
const (
	CommandStatusQueued    = "queued"
	CommandStatusStarted   = "started"
	CommandStatusCompleted = "completed"
	CommandStatusFailed    = "failed"
	CommandStatusAborted   = "aborted"
)

// Movie represents a movie record in Radarr
type Movie struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Year      int        `json:"year"`
	HasFile   bool       `json:"hasFile"`
	Monitored bool       `json:"monitored"`
	Tags      []int64    `json:"tags"`
	MovieFile *MovieFile `json:"movieFile,omitempty"`
}

// MovieFile is the file currently imported for a movie
type MovieFile struct {
	ID                int64   `json:"id"`
	RelativePath      string  `json:"relativePath"`
	CustomFormatScore int     `json:"customFormatScore"`
	Quality           Quality `json:"quality"`
}

// Quality wraps Radarr's nested quality object
type Quality struct {
	Quality QualityDefinition `json:"quality"`
}

// QualityDefinition identifies a quality tier by id and display name
type QualityDefinition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// HistoryEvent is a single entry in a movie's history
type HistoryEvent struct {
	ID                int64             `json:"id"`
	MovieID           int64             `json:"movieId"`
	SourceTitle       string            `json:"sourceTitle"`
	Quality           Quality           `json:"quality"`
	CustomFormatScore int               `json:"customFormatScore"`
	Date              time.Time         `json:"date"`
	EventType         string            `json:"eventType"`
	Data              map[string]string `json:"data,omitempty"`
}

// QualityName returns the human-readable quality label of the event's release.
func (e *HistoryEvent) QualityName() string {
	return e.Quality.Quality.Name
}

// Tag is a Radarr tag
type Tag struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Command represents a queued or running Radarr command
type Command struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
