package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/nippo-hub/nippo-api/internal/models"
)

// QueryObserver records database query timings.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// DraftRepository persists draft documents: one header row per report
// date plus the schedule events in insertion order. It backs both the
// draft-save and the submission collaborators.
type DraftRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewDraftRepository constructs a draft repository. The observer may be
// nil.
func NewDraftRepository(db *sqlx.DB, observer QueryObserver) *DraftRepository {
	return &DraftRepository{db: db, observer: observer}
}

func (r *DraftRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// LoadDraft returns the saved document for a date, or nil when none has
// been saved yet.
func (r *DraftRepository) LoadDraft(ctx context.Context, date time.Time) (*models.DraftDocument, error) {
	defer r.observe("load_draft", time.Now())

	var header models.DraftRecord
	const headerQuery = `SELECT report_date, report_text, status, submitted_at, updated_at FROM daily_reports WHERE report_date = $1`
	if err := r.db.GetContext(ctx, &header, headerQuery, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load draft header: %w", err)
	}

	var rows []models.EventRecord
	const eventsQuery = `SELECT id, report_date, title, start_time, end_time, source, edited, position
FROM report_events WHERE report_date = $1 ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &rows, eventsQuery, date); err != nil {
		return nil, fmt.Errorf("load draft events: %w", err)
	}

	doc := &models.DraftDocument{
		Date:   header.ReportDate,
		Report: models.ReportBody{Text: header.ReportText, Length: utf8.RuneCountInString(header.ReportText)},
		Status: models.DraftStatus(header.Status),
	}
	for _, row := range rows {
		doc.Events = append(doc.Events, models.ScheduleEvent{
			ID:     row.ID,
			Title:  row.Title,
			Start:  row.Start,
			End:    row.End,
			Source: models.EventSource(row.Source),
			Edited: row.Edited,
		})
	}
	return doc, nil
}

// SaveDraft upserts the document without finalizing it.
func (r *DraftRepository) SaveDraft(ctx context.Context, doc *models.DraftDocument) error {
	return r.write(ctx, doc, models.DraftStatusDraft, nil)
}

// SubmitReport upserts the document and marks it finalized.
func (r *DraftRepository) SubmitReport(ctx context.Context, doc *models.DraftDocument) error {
	now := time.Now().UTC()
	return r.write(ctx, doc, models.DraftStatusSubmitted, &now)
}

func (r *DraftRepository) write(ctx context.Context, doc *models.DraftDocument, status models.DraftStatus, submittedAt *time.Time) error {
	defer r.observe("write_draft", time.Now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin draft tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const upsert = `INSERT INTO daily_reports (report_date, report_text, status, submitted_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (report_date) DO UPDATE SET report_text = EXCLUDED.report_text, status = EXCLUDED.status,
submitted_at = EXCLUDED.submitted_at, updated_at = EXCLUDED.updated_at`
	if _, err := tx.ExecContext(ctx, upsert, doc.Date, doc.Report.Text, string(status), submittedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert draft header: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM report_events WHERE report_date = $1`, doc.Date); err != nil {
		return fmt.Errorf("clear draft events: %w", err)
	}

	const insertEvent = `INSERT INTO report_events (id, report_date, title, start_time, end_time, source, edited, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, ev := range doc.Events {
		if _, err := tx.ExecContext(ctx, insertEvent, ev.ID, doc.Date, ev.Title, ev.Start, ev.End, string(ev.Source), ev.Edited, i); err != nil {
			return fmt.Errorf("insert draft event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draft tx: %w", err)
	}
	return nil
}
