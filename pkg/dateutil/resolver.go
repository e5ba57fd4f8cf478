package dateutil

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for report dates.
const DateLayout = "2006-01-02"

// Clock supplies the current time. Injected so date resolution is
// deterministic under test instead of reading the wall clock in place.
type Clock func() time.Time

// Resolver computes calendar dates and day-boundary query windows in one
// fixed, named timezone. The report date must be unambiguous
// organization-wide regardless of where the browser runs, so the viewer's
// local zone is never consulted.
type Resolver struct {
	loc   *time.Location
	clock Clock
}

// NewResolver loads the named IANA timezone and returns a resolver bound
// to it. A nil clock defaults to time.Now.
func NewResolver(timezone string, clock Clock) (*Resolver, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if clock == nil {
		clock = time.Now
	}
	return &Resolver{loc: loc, clock: clock}, nil
}

// Location exposes the fixed timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Today returns the current calendar date in the fixed timezone.
func (r *Resolver) Today() time.Time {
	return r.truncate(r.clock().In(r.loc))
}

// Yesterday returns the previous calendar date.
func (r *Resolver) Yesterday() time.Time {
	return r.ResolveRelativeDate(r.Today(), -1)
}

// Tomorrow returns the next calendar date.
func (r *Resolver) Tomorrow() time.Time {
	return r.ResolveRelativeDate(r.Today(), 1)
}

// ResolveRelativeDate returns the calendar date offsetDays away from base,
// evaluated in the fixed timezone. DST transitions are absorbed by
// time.Date normalisation rather than naive 24h arithmetic.
func (r *Resolver) ResolveRelativeDate(base time.Time, offsetDays int) time.Time {
	b := base.In(r.loc)
	return time.Date(b.Year(), b.Month(), b.Day()+offsetDays, 0, 0, 0, 0, r.loc)
}

// DayBoundaries returns the inclusive window spanning the full calendar
// day in the fixed timezone, 00:00:00.000 through 23:59:59.999. This is
// the query range handed to the calendar provider.
func (r *Resolver) DayBoundaries(date time.Time) (time.Time, time.Time) {
	d := date.In(r.loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, r.loc)
	end := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), r.loc)
	return start, end
}

// ParseDate interprets a "YYYY-MM-DD" string as a calendar date in the
// fixed timezone.
func (r *Resolver) ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, r.loc)
}

// FormatDate renders a date in the wire format.
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

func (r *Resolver) truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc)
}
