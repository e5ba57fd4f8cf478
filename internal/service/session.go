package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nippo-hub/nippo-api/internal/models"
)

// Session is one live editing session: the draft document for a single
// report date plus the components that own its parts. All in-memory
// mutation goes through the session mutex, so per-session operations are
// serialized, never interleaved.
type Session struct {
	ID   string
	Date time.Time

	mu         sync.Mutex
	store      *EventStore
	draft      *ReportDraft
	controller *SubmissionController

	// touched is read by the registry sweep without taking the session
	// mutex, so it stays atomic to keep lock ordering one-way.
	touched int64
}

// Document assembles the current DraftDocument snapshot.
func (s *Session) Document() models.DraftDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentLocked()
}

func (s *Session) documentLocked() models.DraftDocument {
	status := models.DraftStatusDraft
	if s.controller.Submitted() {
		status = models.DraftStatusSubmitted
	}
	return models.DraftDocument{
		Date:   s.Date,
		Events: s.store.Events(),
		Report: s.draft.Body(),
		Status: status,
	}
}

func (s *Session) touch(now time.Time) {
	atomic.StoreInt64(&s.touched, now.UnixNano())
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.UnixNano()-atomic.LoadInt64(&s.touched) > ttl.Nanoseconds()
}
