package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/nippo-hub/nippo-api/internal/models"
	appErrors "github.com/nippo-hub/nippo-api/pkg/errors"
)

// EventStore owns the authoritative in-memory schedule for one editing
// session: provider-fetched events, local edits to them, and manually
// added events, in insertion order.
//
// The provider is the source of truth for FETCHED events, so Ingest
// replaces that subset wholesale instead of attempting a field-level
// three-way merge. Events the user touched locally (MANUAL, or FETCHED
// with the edited flag set) survive every Ingest; only ForceReset, a
// user-confirmed destructive action, discards them.
type EventStore struct {
	events     []models.ScheduleEvent
	generation uint64
}

// NewEventStore returns an empty store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// NewEventStoreWith seeds a store from previously persisted events,
// preserving their sources and edited flags.
func NewEventStoreWith(events []models.ScheduleEvent) *EventStore {
	s := &EventStore{}
	s.events = append(s.events, events...)
	return s
}

// Events returns a copy of the current schedule in insertion order.
func (s *EventStore) Events() []models.ScheduleEvent {
	out := make([]models.ScheduleEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Generation identifies the store state a fetch was issued against. A
// fetch result may only be applied while the generation it saw is still
// current; see SessionService.Refresh.
func (s *EventStore) Generation() uint64 {
	return s.generation
}

// Ingest applies a freshly fetched payload: the FETCHED subset is
// replaced as a unit, except events the user edited locally, which are
// kept verbatim (the incoming copy with the same id is dropped). MANUAL
// events are never touched.
func (s *EventStore) Ingest(fetched []models.ScheduleEvent) {
	kept := make([]models.ScheduleEvent, 0, len(s.events)+len(fetched))
	seen := make(map[string]struct{})
	for _, ev := range s.events {
		if ev.Source == models.EventSourceManual || ev.Edited {
			kept = append(kept, ev)
			seen[ev.ID] = struct{}{}
		}
	}
	for _, ev := range fetched {
		if _, dup := seen[ev.ID]; dup {
			continue
		}
		ev.Source = models.EventSourceFetched
		ev.Edited = false
		kept = append(kept, ev)
		seen[ev.ID] = struct{}{}
	}
	s.events = kept
	s.generation++
}

// ForceReset discards every current event, including MANUAL ones and
// unsaved edits, and adopts the fetched payload as the new schedule.
// Irreversible within the session; callers must have collected an
// explicit user confirmation first.
func (s *EventStore) ForceReset(fetched []models.ScheduleEvent) {
	s.events = make([]models.ScheduleEvent, 0, len(fetched))
	for _, ev := range fetched {
		ev.Source = models.EventSourceFetched
		ev.Edited = false
		s.events = append(s.events, ev)
	}
	s.generation++
}

// EditEvent updates the patched fields of the event with the given id.
// The update is atomic: when the resulting range is invalid the stored
// event keeps its prior values.
func (s *EventStore) EditEvent(id string, patch models.EventPatch) (*models.ScheduleEvent, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}

	updated := s.events[idx]
	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.Start != nil {
		updated.Start = *patch.Start
	}
	if patch.End != nil {
		updated.End = *patch.End
	}
	if !updated.Start.Before(updated.End) {
		return nil, appErrors.ErrInvalidRange
	}
	if updated.Source == models.EventSourceFetched {
		updated.Edited = true
	}

	s.events[idx] = updated
	return &updated, nil
}

// AddManualEvent appends a user-created event with a fresh id.
func (s *EventStore) AddManualEvent(title string, start, end time.Time) (*models.ScheduleEvent, error) {
	if !start.Before(end) {
		return nil, appErrors.ErrInvalidRange
	}
	ev := models.ScheduleEvent{
		ID:     uuid.NewString(),
		Title:  title,
		Start:  start,
		End:    end,
		Source: models.EventSourceManual,
	}
	s.events = append(s.events, ev)
	return &ev, nil
}

// RemoveEvent deletes the event with the given id regardless of source.
func (s *EventStore) RemoveEvent(id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	s.events = append(s.events[:idx], s.events[idx+1:]...)
	return nil
}

func (s *EventStore) indexOf(id string) int {
	for i, ev := range s.events {
		if ev.ID == id {
			return i
		}
	}
	return -1
}
