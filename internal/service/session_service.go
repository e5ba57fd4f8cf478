package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nippo-hub/nippo-api/internal/dto"
	"github.com/nippo-hub/nippo-api/internal/models"
	"github.com/nippo-hub/nippo-api/pkg/config"
	"github.com/nippo-hub/nippo-api/pkg/dateutil"
	appErrors "github.com/nippo-hub/nippo-api/pkg/errors"
	"github.com/nippo-hub/nippo-api/pkg/export"
	"github.com/nippo-hub/nippo-api/pkg/jobs"
)

// ExportJob carries a rendered export to the archive workers.
type ExportJob struct {
	Filename string
	Payload  []byte
}

// CalendarFetcher retrieves the day's events from the calendar provider.
type CalendarFetcher interface {
	FetchEvents(ctx context.Context, start, end time.Time) ([]models.ScheduleEvent, error)
}

// DraftLoader hydrates a previously saved draft for a date. A nil
// document means no draft exists yet.
type DraftLoader interface {
	LoadDraft(ctx context.Context, date time.Time) (*models.DraftDocument, error)
}

// SessionService owns the live editing sessions. Each session bundles an
// EventStore, a ReportDraft and a SubmissionController around one
// DraftDocument; the service routes API calls to the owning session and
// orchestrates the calendar fetch with its stale-response guard.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	fetcher   CalendarFetcher
	loader    DraftLoader
	saver     DraftSaver
	submitter Submitter
	cache     *CacheService
	resolver  *dateutil.Resolver
	reportCfg config.ReportConfig
	ttl       time.Duration
	clock     dateutil.Clock
	validator *validator.Validate
	metrics   *MetricsService
	archive   *jobs.Queue[ExportJob]
	logger    *zap.Logger

	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewSessionService wires the session registry with its collaborators.
func NewSessionService(
	fetcher CalendarFetcher,
	loader DraftLoader,
	saver DraftSaver,
	submitter Submitter,
	cache *CacheService,
	resolver *dateutil.Resolver,
	reportCfg config.ReportConfig,
	sessionCfg config.SessionConfig,
	clock dateutil.Clock,
	validate *validator.Validate,
	metrics *MetricsService,
	archive *jobs.Queue[ExportJob],
	logger *zap.Logger,
) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &SessionService{
		sessions:  make(map[string]*Session),
		fetcher:   fetcher,
		loader:    loader,
		saver:     saver,
		submitter: submitter,
		cache:     cache,
		resolver:  resolver,
		reportCfg: reportCfg,
		ttl:       sessionCfg.TTL,
		clock:     clock,
		validator: validate,
		metrics:   metrics,
		archive:   archive,
		logger:    logger,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Create opens an editing session for the requested date, hydrating the
// saved draft for that date when one exists. A date whose report was
// already submitted opens read-only.
func (s *SessionService) Create(ctx context.Context, req dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	date, err := s.resolver.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	sess := &Session{
		ID:         uuid.NewString(),
		Date:       date,
		store:      NewEventStore(),
		draft:      NewReportDraft(s.reportCfg),
		controller: NewSubmissionController(s.saver, s.submitter, s.logger),
	}
	sess.touch(s.clock())

	if s.loader != nil {
		saved, err := s.loader.LoadDraft(ctx, date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistenceFailed.Code, appErrors.ErrPersistenceFailed.Status, "failed to load saved draft")
		}
		if saved != nil {
			sess.store = NewEventStoreWith(saved.Events)
			if err := sess.draft.SetText(saved.Report.Text); err != nil {
				return nil, err
			}
			if saved.Status == models.DraftStatusSubmitted {
				sess.controller = NewSubmittedController(s.saver, s.submitter, s.logger)
			}
		}
	}

	s.mu.Lock()
	s.sweepLocked()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("session opened",
		zap.String("session_id", sess.ID),
		zap.String("date", dateutil.FormatDate(date)))
	return s.view(sess), nil
}

// Get returns the document view for a session.
func (s *SessionService) Get(id string) (*dto.SessionResponse, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// End closes a session and discards unsaved state. Any fetch still in
// flight for the session is discarded when it completes.
func (s *SessionService) End(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	delete(s.sessions, id)
	return nil
}

// Refresh fetches the day's events and ingests them, leaving manual
// events and locally edited ones in place. The returned bool reports
// whether the payload was applied: a result is discarded when the session
// moved on (reset or closed) while the fetch was outstanding.
func (s *SessionService) Refresh(ctx context.Context, id string) (*dto.SessionResponse, bool, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, false, err
	}
	if sess.controller.Submitted() {
		return nil, false, appErrors.ErrFinalized
	}

	sess.mu.Lock()
	generation := sess.store.Generation()
	sess.mu.Unlock()

	events, err := s.loadDayEvents(ctx, sess.Date, true)
	if err != nil {
		return nil, false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	// Re-checked under the session mutex: the session may have closed,
	// been reset, or been submitted while the fetch was in flight. A
	// finalized document never ingests.
	if !s.registered(sess) || sess.controller.Submitted() || sess.store.Generation() != generation {
		s.metrics.RecordStaleDiscard()
		s.logger.Info("stale fetch result discarded", zap.String("session_id", sess.ID))
		return s.viewLocked(sess), false, nil
	}
	sess.store.Ingest(events)
	sess.touch(s.clock())
	return s.viewLocked(sess), true, nil
}

// Reset discards the whole schedule, manual events and edits included,
// and replaces it with a live fetch. Destructive and irreversible within
// the session, so the request must carry an explicit confirmation.
func (s *SessionService) Reset(ctx context.Context, id string, req dto.ResetRequest) (*dto.SessionResponse, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if sess.controller.Submitted() {
		return nil, appErrors.ErrFinalized
	}
	if !req.Confirm {
		return nil, appErrors.ErrConfirmationNeeded
	}

	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, s.cacheKey(sess.Date))
	}
	events, err := s.loadDayEvents(ctx, sess.Date, false)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !s.registered(sess) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	// The report may have been submitted while the fetch was in flight.
	if sess.controller.Submitted() {
		return nil, appErrors.ErrFinalized
	}
	sess.store.ForceReset(events)
	sess.touch(s.clock())
	return s.viewLocked(sess), nil
}

// AddEvent appends a manual event to the schedule.
func (s *SessionService) AddEvent(id string, req dto.CreateEventRequest) (*models.ScheduleEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	sess, err := s.editableSession(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	ev, err := sess.store.AddManualEvent(req.Title, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	sess.touch(s.clock())
	return ev, nil
}

// EditEvent patches an existing event.
func (s *SessionService) EditEvent(id, eventID string, req dto.UpdateEventRequest) (*models.ScheduleEvent, error) {
	sess, err := s.editableSession(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	ev, err := sess.store.EditEvent(eventID, models.EventPatch{Title: req.Title, Start: req.Start, End: req.End})
	if err != nil {
		return nil, err
	}
	sess.touch(s.clock())
	return ev, nil
}

// RemoveEvent deletes an event regardless of source.
func (s *SessionService) RemoveEvent(id, eventID string) error {
	sess, err := s.editableSession(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.store.RemoveEvent(eventID); err != nil {
		return err
	}
	sess.touch(s.clock())
	return nil
}

// SetReport replaces the report body.
func (s *SessionService) SetReport(id string, req dto.SetReportRequest) (*dto.ReportStateResponse, error) {
	sess, err := s.editableSession(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.draft.SetText(req.Text); err != nil {
		return nil, err
	}
	sess.touch(s.clock())
	return &dto.ReportStateResponse{Report: sess.draft.Body(), Quality: sess.draft.QualityState()}, nil
}

// QuickInsert appends a template snippet to the report body.
func (s *SessionService) QuickInsert(id string, req dto.QuickInsertRequest) (*dto.ReportStateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	sess, err := s.editableSession(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.draft.QuickInsert(req.Template); err != nil {
		return nil, err
	}
	sess.touch(s.clock())
	return &dto.ReportStateResponse{Report: sess.draft.Body(), Quality: sess.draft.QualityState()}, nil
}

// SaveDraft persists the current document without finalizing it.
func (s *SessionService) SaveDraft(ctx context.Context, id string) (*dto.SessionResponse, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	doc := sess.Document()
	if err := sess.controller.SaveDraft(ctx, &doc); err != nil {
		return nil, err
	}
	s.metrics.RecordDraftSave()
	sess.touch(s.clock())
	return s.view(sess), nil
}

// Submit finalizes the report for the day. The session becomes read-only
// on success.
func (s *SessionService) Submit(ctx context.Context, id string) (*dto.SessionResponse, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	doc := sess.Document()
	if err := sess.controller.Submit(ctx, &doc); err != nil {
		return nil, err
	}
	s.metrics.RecordSubmission()
	s.logger.Info("report submitted",
		zap.String("session_id", sess.ID),
		zap.String("date", dateutil.FormatDate(sess.Date)))
	sess.touch(s.clock())
	return s.view(sess), nil
}

// Export renders the document as CSV or PDF.
func (s *SessionService) Export(id, format string) ([]byte, string, string, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, "", "", err
	}
	doc := sess.Document()

	events := doc.Events
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })

	data := export.Dataset{Headers: []string{"Start", "End", "Title", "Source"}}
	for _, ev := range events {
		data.Rows = append(data.Rows, map[string]string{
			"Start":  ev.Start.In(s.resolver.Location()).Format("15:04"),
			"End":    ev.End.In(s.resolver.Location()).Format("15:04"),
			"Title":  ev.Title,
			"Source": string(ev.Source),
		})
	}

	day := dateutil.FormatDate(doc.Date)
	var (
		payload     []byte
		contentType string
		filename    string
	)
	switch format {
	case "csv":
		payload, err = s.csv.Render(data)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		contentType, filename = "text/csv", fmt.Sprintf("report-%s.csv", day)
	case "pdf":
		payload, err = s.pdf.Render(data, fmt.Sprintf("Daily Report %s", day), doc.Report.Text)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		contentType, filename = "application/pdf", fmt.Sprintf("report-%s.pdf", day)
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	if s.archive != nil {
		job := jobs.Job[ExportJob]{ID: uuid.NewString(), Payload: ExportJob{Filename: filename, Payload: payload}}
		if err := s.archive.Enqueue(job); err != nil {
			s.logger.Warn("failed to queue export for archiving", zap.Error(err))
		}
	}
	return payload, contentType, filename, nil
}

// Templates lists the configured quick-insert snippets.
func (s *SessionService) Templates() []string {
	return s.reportCfg.QuickTemplates
}

func (s *SessionService) session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return sess, nil
}

func (s *SessionService) editableSession(id string) (*Session, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if sess.controller.Submitted() {
		return nil, appErrors.ErrFinalized
	}
	return sess, nil
}

func (s *SessionService) registered(sess *Session) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sess.ID] == sess
}

// loadDayEvents resolves the day window and asks the cache, then the
// provider, for the day's events.
func (s *SessionService) loadDayEvents(ctx context.Context, date time.Time, useCache bool) ([]models.ScheduleEvent, error) {
	key := s.cacheKey(date)
	if useCache {
		var cached []models.ScheduleEvent
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	start, end := s.resolver.DayBoundaries(date)
	events, err := s.fetcher.FetchEvents(ctx, start, end)
	s.metrics.RecordCalendarFetch(err == nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}

	_ = s.cache.Set(ctx, key, events, 0)
	return events, nil
}

func (s *SessionService) cacheKey(date time.Time) string {
	return "calendar:" + dateutil.FormatDate(date)
}

func (s *SessionService) view(sess *Session) *dto.SessionResponse {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess)
}

// viewLocked builds the response; the caller holds the session mutex.
func (s *SessionService) viewLocked(sess *Session) *dto.SessionResponse {
	doc := sess.documentLocked()
	return &dto.SessionResponse{
		ID:      sess.ID,
		Date:    dateutil.FormatDate(doc.Date),
		Status:  doc.Status,
		State:   string(sess.controller.State()),
		Events:  doc.Events,
		Report:  doc.Report,
		Quality: sess.draft.QualityState(),
	}
}

// sweepLocked drops sessions idle past the TTL; the caller holds the
// registry lock.
func (s *SessionService) sweepLocked() {
	now := s.clock()
	for id, sess := range s.sessions {
		if sess.expired(now, s.ttl) {
			delete(s.sessions, id)
		}
	}
}
