package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nippo-hub/nippo-api/internal/dto"
	"github.com/nippo-hub/nippo-api/internal/models"
	"github.com/nippo-hub/nippo-api/pkg/config"
	"github.com/nippo-hub/nippo-api/pkg/dateutil"
	appErrors "github.com/nippo-hub/nippo-api/pkg/errors"
)

type fetcherMock struct {
	mu      sync.Mutex
	events  []models.ScheduleEvent
	err     error
	calls   int
	onFetch func(call int)
}

func (m *fetcherMock) FetchEvents(ctx context.Context, start, end time.Time) ([]models.ScheduleEvent, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	hook := m.onFetch
	events, err := m.events, m.err
	m.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return events, err
}

type loaderMock struct {
	doc *models.DraftDocument
	err error
}

func (m *loaderMock) LoadDraft(ctx context.Context, date time.Time) (*models.DraftDocument, error) {
	return m.doc, m.err
}

type mutableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mutableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mutableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestSessionService(t *testing.T, fetcher CalendarFetcher, loader DraftLoader, persist *persistenceMock, sessionCfg config.SessionConfig, clock dateutil.Clock) *SessionService {
	t.Helper()
	resolver, err := dateutil.NewResolver("Asia/Tokyo", clock)
	require.NoError(t, err)
	metrics := NewMetricsService()
	cacheSvc := NewCacheService(nil, metrics, 0, nil, false)
	return NewSessionService(
		fetcher, loader, persist, persist,
		cacheSvc, resolver,
		config.ReportConfig{QuickTemplates: []string{"【本日の業務】", "【所感】"}},
		sessionCfg, clock, nil, metrics, nil, nil,
	)
}

func openSession(t *testing.T, svc *SessionService) string {
	t.Helper()
	view, err := svc.Create(context.Background(), dto.CreateSessionRequest{Date: "2025-09-01"})
	require.NoError(t, err)
	return view.ID
}

func TestSessionServiceCreateValidatesDate(t *testing.T) {
	svc := newTestSessionService(t, &fetcherMock{}, nil, &persistenceMock{}, config.SessionConfig{}, nil)

	_, err := svc.Create(context.Background(), dto.CreateSessionRequest{Date: ""})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), dto.CreateSessionRequest{Date: "September 1st"})
	require.Error(t, err)
}

func TestSessionServiceCreateStartsEmpty(t *testing.T) {
	svc := newTestSessionService(t, &fetcherMock{}, nil, &persistenceMock{}, config.SessionConfig{}, nil)

	view, err := svc.Create(context.Background(), dto.CreateSessionRequest{Date: "2025-09-01"})
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01", view.Date)
	assert.Equal(t, models.DraftStatusDraft, view.Status)
	assert.Equal(t, string(StateEditing), view.State)
	assert.Empty(t, view.Events)
	assert.Equal(t, models.QualityBelowMinimum, view.Quality)
}

func TestSessionServiceCreateHydratesSavedDraft(t *testing.T) {
	saved := &models.DraftDocument{
		Date: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Events: []models.ScheduleEvent{
			{ID: "e1", Title: "Standup (edited)", Start: at(9, 0), End: at(10, 0), Source: models.EventSourceFetched, Edited: true},
		},
		Report: models.ReportBody{Text: "作業内容", Length: 4},
		Status: models.DraftStatusDraft,
	}
	svc := newTestSessionService(t, &fetcherMock{}, &loaderMock{doc: saved}, &persistenceMock{}, config.SessionConfig{}, nil)

	view, err := svc.Create(context.Background(), dto.CreateSessionRequest{Date: "2025-09-01"})
	require.NoError(t, err)
	require.Len(t, view.Events, 1)
	assert.True(t, view.Events[0].Edited)
	assert.Equal(t, "作業内容", view.Report.Text)
}

func TestSessionServiceCreateSubmittedDateIsReadOnly(t *testing.T) {
	saved := &models.DraftDocument{
		Date:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		Report: models.ReportBody{Text: "提出済み", Length: 4},
		Status: models.DraftStatusSubmitted,
	}
	svc := newTestSessionService(t, &fetcherMock{}, &loaderMock{doc: saved}, &persistenceMock{}, config.SessionConfig{}, nil)

	view, err := svc.Create(context.Background(), dto.CreateSessionRequest{Date: "2025-09-01"})
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusSubmitted, view.Status)

	_, err = svc.SetReport(view.ID, dto.SetReportRequest{Text: "edit"})
	require.ErrorIs(t, err, appErrors.ErrFinalized)
	_, err = svc.AddEvent(view.ID, dto.CreateEventRequest{Title: "x", Start: at(9, 0), End: at(10, 0)})
	require.ErrorIs(t, err, appErrors.ErrFinalized)
}

func TestSessionServiceRefreshAppliesFetch(t *testing.T) {
	fetcher := &fetcherMock{events: []models.ScheduleEvent{fetchedEvent("e1", "Standup", 9, 10)}}
	svc := newTestSessionService(t, fetcher, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	view, applied, err := svc.Refresh(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, view.Events, 1)
	assert.Equal(t, "Standup", view.Events[0].Title)
}

func TestSessionServiceRefreshUpstreamFailure(t *testing.T) {
	fetcher := &fetcherMock{err: errors.New("connection refused")}
	svc := newTestSessionService(t, fetcher, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	_, _, err := svc.Refresh(context.Background(), id)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErr.Code)
}

func TestSessionServiceRefreshDiscardsResultAfterSessionEnds(t *testing.T) {
	fetcher := &fetcherMock{events: []models.ScheduleEvent{fetchedEvent("e1", "Standup", 9, 10)}}
	svc := newTestSessionService(t, fetcher, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	// The session closes while the fetch is in flight.
	fetcher.onFetch = func(call int) {
		if call == 1 {
			require.NoError(t, svc.End(id))
		}
	}

	_, applied, err := svc.Refresh(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestSessionServiceRefreshDiscardsStaleGeneration(t *testing.T) {
	fetcher := &fetcherMock{events: []models.ScheduleEvent{fetchedEvent("e1", "Standup", 9, 10)}}
	svc := newTestSessionService(t, fetcher, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	// A confirmed reset lands while the first fetch is still in flight;
	// the stale payload must not clobber the reset's result.
	fetcher.onFetch = func(call int) {
		if call == 1 {
			fetcher.mu.Lock()
			fetcher.events = []models.ScheduleEvent{fetchedEvent("e2", "Planning", 13, 14)}
			fetcher.mu.Unlock()
			_, err := svc.Reset(context.Background(), id, dto.ResetRequest{Confirm: true})
			require.NoError(t, err)
		}
	}

	view, applied, err := svc.Refresh(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, applied)
	require.Len(t, view.Events, 1)
	assert.Equal(t, "Planning", view.Events[0].Title)
}

func TestSessionServiceRefreshDiscardsResultAfterSubmission(t *testing.T) {
	fetcher := &fetcherMock{events: []models.ScheduleEvent{fetchedEvent("e1", "Standup", 9, 10)}}
	svc := newTestSessionService(t, fetcher, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	// The report is submitted while the fetch is in flight; the payload
	// must not land on the finalized document.
	fetcher.onFetch = func(call int) {
		if call == 1 {
			_, err := svc.Submit(context.Background(), id)
			require.NoError(t, err)
		}
	}

	view, applied, err := svc.Refresh(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, models.DraftStatusSubmitted, view.Status)
	assert.Empty(t, view.Events)
}

func TestSessionServiceResetRejectedAfterSubmission(t *testing.T) {
	fetcher := &fetcherMock{events: []models.ScheduleEvent{fetchedEvent("e1", "Standup", 9, 10)}}
	svc := newTestSessionService(t, fetcher, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	fetcher.onFetch = func(call int) {
		if call == 1 {
			_, err := svc.Submit(context.Background(), id)
			require.NoError(t, err)
		}
	}

	_, err := svc.Reset(context.Background(), id, dto.ResetRequest{Confirm: true})
	require.ErrorIs(t, err, appErrors.ErrFinalized)

	view, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusSubmitted, view.Status)
	assert.Empty(t, view.Events)
}

func TestSessionServiceResetRequiresConfirmation(t *testing.T) {
	fetcher := &fetcherMock{}
	svc := newTestSessionService(t, fetcher, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	_, err := svc.Reset(context.Background(), id, dto.ResetRequest{})
	require.ErrorIs(t, err, appErrors.ErrConfirmationNeeded)
	assert.Equal(t, 0, fetcher.calls)
}

func TestSessionServiceResetDiscardsManualEventsAndEdits(t *testing.T) {
	fetcher := &fetcherMock{events: []models.ScheduleEvent{fetchedEvent("e1", "Standup", 9, 10)}}
	svc := newTestSessionService(t, fetcher, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	_, _, err := svc.Refresh(context.Background(), id)
	require.NoError(t, err)
	_, err = svc.AddEvent(id, dto.CreateEventRequest{Title: "Customer call", Start: at(14, 0), End: at(15, 0)})
	require.NoError(t, err)

	view, err := svc.Reset(context.Background(), id, dto.ResetRequest{Confirm: true})
	require.NoError(t, err)
	require.Len(t, view.Events, 1)
	assert.Equal(t, "e1", view.Events[0].ID)
}

func TestSessionServiceEventLifecycle(t *testing.T) {
	svc := newTestSessionService(t, &fetcherMock{}, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	ev, err := svc.AddEvent(id, dto.CreateEventRequest{Title: "Customer call", Start: at(14, 0), End: at(15, 0)})
	require.NoError(t, err)
	assert.Equal(t, models.EventSourceManual, ev.Source)

	newEnd := at(16, 0)
	updated, err := svc.EditEvent(id, ev.ID, dto.UpdateEventRequest{End: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, newEnd, updated.End)
	// Manual events never gain the edited flag; it marks local changes
	// to provider data only.
	assert.False(t, updated.Edited)

	require.NoError(t, svc.RemoveEvent(id, ev.ID))
	view, err := svc.Get(id)
	require.NoError(t, err)
	assert.Empty(t, view.Events)
}

func TestSessionServiceReportAndQuality(t *testing.T) {
	svc := newTestSessionService(t, &fetcherMock{}, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	state, err := svc.SetReport(id, dto.SetReportRequest{Text: "short"})
	require.NoError(t, err)
	assert.Equal(t, models.QualityBelowMinimum, state.Quality)

	state, err = svc.QuickInsert(id, dto.QuickInsertRequest{Template: "【所感】"})
	require.NoError(t, err)
	assert.Equal(t, "short【所感】", state.Report.Text)
}

func TestSessionServiceSaveAndSubmit(t *testing.T) {
	persist := &persistenceMock{}
	svc := newTestSessionService(t, &fetcherMock{}, nil, persist, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	_, err := svc.SetReport(id, dto.SetReportRequest{Text: "本日の作業を完了した"})
	require.NoError(t, err)

	view, err := svc.SaveDraft(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, string(StateEditing), view.State)
	assert.Equal(t, 1, persist.saveCalls)

	view, err = svc.Submit(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusSubmitted, view.Status)
	assert.Equal(t, string(StateSubmitted), view.State)

	_, err = svc.SetReport(id, dto.SetReportRequest{Text: "too late"})
	require.ErrorIs(t, err, appErrors.ErrFinalized)
	_, _, err = svc.Refresh(context.Background(), id)
	require.ErrorIs(t, err, appErrors.ErrFinalized)
}

func TestSessionServiceSubmitFailureKeepsEditing(t *testing.T) {
	persist := &persistenceMock{submitErr: errors.New("rejected")}
	svc := newTestSessionService(t, &fetcherMock{}, nil, persist, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	_, err := svc.Submit(context.Background(), id)
	require.Error(t, err)

	view, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusDraft, view.Status)
	assert.Equal(t, string(StateEditing), view.State)
}

func TestSessionServiceExport(t *testing.T) {
	svc := newTestSessionService(t, &fetcherMock{}, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	id := openSession(t, svc)

	_, err := svc.AddEvent(id, dto.CreateEventRequest{Title: "Customer call", Start: at(14, 0), End: at(15, 0)})
	require.NoError(t, err)

	payload, contentType, filename, err := svc.Export(id, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "report-2025-09-01.csv", filename)
	assert.Contains(t, string(payload), "Customer call")

	_, contentType, filename, err = svc.Export(id, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "report-2025-09-01.pdf", filename)

	_, _, _, err = svc.Export(id, "xlsx")
	require.Error(t, err)
}

func TestSessionServiceUnknownSession(t *testing.T) {
	svc := newTestSessionService(t, &fetcherMock{}, nil, &persistenceMock{}, config.SessionConfig{}, nil)

	_, err := svc.Get("nope")
	require.Error(t, err)
	require.Error(t, svc.End("nope"))
}

func TestSessionServiceSweepsExpiredSessions(t *testing.T) {
	clock := &mutableClock{now: time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)}
	svc := newTestSessionService(t, &fetcherMock{}, nil, &persistenceMock{}, config.SessionConfig{TTL: time.Hour}, clock.Now)

	stale := openSession(t, svc)
	clock.Advance(2 * time.Hour)

	// Opening another session triggers the sweep.
	fresh := openSession(t, svc)

	_, err := svc.Get(stale)
	require.Error(t, err)
	_, err = svc.Get(fresh)
	require.NoError(t, err)
}

func TestSessionServiceTemplates(t *testing.T) {
	svc := newTestSessionService(t, &fetcherMock{}, nil, &persistenceMock{}, config.SessionConfig{}, nil)
	assert.Equal(t, []string{"【本日の業務】", "【所感】"}, svc.Templates())
}
