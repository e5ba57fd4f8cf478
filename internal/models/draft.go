package models

import "time"

// DraftStatus is the lifecycle state of a day's report document.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "DRAFT"
	DraftStatusSubmitted DraftStatus = "SUBMITTED"
)

// QualityState is the advisory classification of the report body length.
// It never blocks saving or submission.
type QualityState string

const (
	QualityBelowMinimum QualityState = "BELOW_MINIMUM"
	QualityAcceptable   QualityState = "ACCEPTABLE"
	QualityOverGuidance QualityState = "OVER_GUIDANCE"
)

// ReportBody holds the free-text report content. Length is counted in
// runes: report bodies are predominantly Japanese and byte counting would
// charge each character three times.
type ReportBody struct {
	Text   string `json:"text"`
	Length int    `json:"length"`
}

// DraftDocument is the coherent, submittable document for one report date:
// the reconciled schedule events in insertion order plus the report body.
// It is owned by exactly one editing session and never shared across
// sessions.
type DraftDocument struct {
	Date   time.Time       `json:"date"`
	Events []ScheduleEvent `json:"events"`
	Report ReportBody      `json:"report"`
	Status DraftStatus     `json:"status"`
}

// DraftRecord is the persisted form of a draft's header row.
type DraftRecord struct {
	ReportDate  time.Time  `db:"report_date"`
	ReportText  string     `db:"report_text"`
	Status      string     `db:"status"`
	SubmittedAt *time.Time `db:"submitted_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// EventRecord is the persisted form of one schedule event row.
type EventRecord struct {
	ID         string    `db:"id"`
	ReportDate time.Time `db:"report_date"`
	Title      string    `db:"title"`
	Start      time.Time `db:"start_time"`
	End        time.Time `db:"end_time"`
	Source     string    `db:"source"`
	Edited     bool      `db:"edited"`
	Position   int       `db:"position"`
}
