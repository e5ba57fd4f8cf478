package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nippo-hub/nippo-api/internal/models"
	"github.com/nippo-hub/nippo-api/pkg/config"
)

func window(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, loc)
	return start, start.Add(24*time.Hour - time.Millisecond)
}

func TestCalendarClientFetchEvents(t *testing.T) {
	start, end := window(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, start.Format(time.RFC3339), r.URL.Query().Get("start"))
		assert.Equal(t, end.Format(time.RFC3339), r.URL.Query().Get("end"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"e1","title":"Standup","start":"2025-09-01T09:00:00+09:00","end":"2025-09-01T09:15:00+09:00"},
			{"title":"Lunch with client","start":"2025-09-01T12:00:00+09:00","end":"2025-09-01T13:00:00+09:00"}
		]`))
	}))
	defer srv.Close()

	c := NewCalendarClient(config.CalendarConfig{BaseURL: srv.URL}, nil)
	events, err := c.FetchEvents(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, models.EventSourceFetched, events[0].Source)

	// An event without an id gets a deterministic fallback so the next
	// fetch reconciles against the same entry.
	assert.Equal(t, "2025-09-01T12:00:00+09:00-Lunch with client", events[1].ID)
}

func TestCalendarClientProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCalendarClient(config.CalendarConfig{BaseURL: srv.URL}, nil)
	start, end := window(t)
	_, err := c.FetchEvents(context.Background(), start, end)
	require.Error(t, err)
}

func TestCalendarClientUnreachable(t *testing.T) {
	c := NewCalendarClient(config.CalendarConfig{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, nil)
	start, end := window(t)
	_, err := c.FetchEvents(context.Background(), start, end)
	require.Error(t, err)
}
