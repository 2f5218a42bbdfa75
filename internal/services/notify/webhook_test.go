package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scorarr/scorarr/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestSendMismatchPostsPayload(t *testing.T) {
	var received map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(&config.Config{WebhookURL: server.URL}, testLogger())

	err := notifier.SendMismatch(context.Background(), Mismatch{
		Title:         "Heat",
		Year:          1995,
		ExpectedScore: 80,
		ActualScore:   40,
		Difference:    -40,
		MaxOverScore:  100,
		QualityLabel:  "Bluray-1080p",
	})
	require.NoError(t, err)

	var event string
	require.NoError(t, json.Unmarshal(received["event"], &event))
	assert.Equal(t, "score_mismatch", event)

	var m Mismatch
	require.NoError(t, json.Unmarshal(received["mismatch"], &m))
	assert.Equal(t, "Heat", m.Title)
	assert.Equal(t, 1995, m.Year)
	assert.Equal(t, -40, m.Difference)
	assert.Equal(t, "Bluray-1080p", m.QualityLabel)
}

func TestSendMismatchSkipsWithoutURL(t *testing.T) {
	notifier := NewWebhookNotifier(&config.Config{}, testLogger())

	err := notifier.SendMismatch(context.Background(), Mismatch{Title: "Heat"})
	assert.NoError(t, err, "no configured URL means delivery is silently skipped")
}

func TestSendMismatchReportsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(&config.Config{WebhookURL: server.URL}, testLogger())

	err := notifier.SendMismatch(context.Background(), Mismatch{Title: "Heat"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
