package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/nippo-hub/nippo-api/internal/models"
	"github.com/nippo-hub/nippo-api/pkg/config"
)

// CalendarClient retrieves schedule events from the calendar provider.
// The core never talks to the network itself; this is the fetch
// collaborator handed to the session layer.
type CalendarClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// wireEvent is the provider's event representation.
type wireEvent struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewCalendarClient constructs a provider client.
func NewCalendarClient(cfg config.CalendarConfig, logger *zap.Logger) *CalendarClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CalendarClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FetchEvents queries the provider for events inside the given window.
func (c *CalendarClient) FetchEvents(ctx context.Context, start, end time.Time) ([]models.ScheduleEvent, error) {
	query := url.Values{}
	query.Set("start", start.Format(time.RFC3339))
	query.Set("end", end.Format(time.RFC3339))
	endpoint := fmt.Sprintf("%s/events?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar provider returned %d", resp.StatusCode)
	}

	var raw []wireEvent
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode calendar response: %w", err)
	}

	events := make([]models.ScheduleEvent, 0, len(raw))
	fallbacks := 0
	for _, w := range raw {
		id := w.ID
		// Some providers omit stable ids; derive a deterministic one so
		// re-fetches reconcile against the same entry.
		if id == "" {
			id = w.Start.Format(time.RFC3339) + "-" + w.Title
			fallbacks++
		}
		events = append(events, models.ScheduleEvent{
			ID:     id,
			Title:  w.Title,
			Start:  w.Start,
			End:    w.End,
			Source: models.EventSourceFetched,
		})
	}
	if fallbacks > 0 {
		c.logger.Debug("generated fallback ids for events without one", zap.Int("count", fallbacks))
	}

	return events, nil
}
