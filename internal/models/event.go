package models

import "time"

// EventSource distinguishes provider-fetched events from ones the user
// added by hand during the session.
type EventSource string

const (
	// EventSourceFetched marks entries pulled from the calendar provider.
	EventSourceFetched EventSource = "FETCHED"
	// EventSourceManual marks entries created locally. A re-fetch merge
	// never overwrites them; only a confirmed full reset clears them.
	EventSourceManual EventSource = "MANUAL"
)

// ScheduleEvent is one entry of the day's schedule. Invariant: Start < End.
type ScheduleEvent struct {
	ID     string      `db:"id" json:"id"`
	Title  string      `db:"title" json:"title"`
	Start  time.Time   `db:"start_time" json:"start"`
	End    time.Time   `db:"end_time" json:"end"`
	Source EventSource `db:"source" json:"source"`
	// Edited is set the first time a FETCHED event's fields are changed
	// locally. It survives until a reset replaces the event.
	Edited bool `db:"edited" json:"edited"`
}

// EventPatch names the fields an edit may change. Nil means "leave as is".
type EventPatch struct {
	Title *string
	Start *time.Time
	End   *time.Time
}
