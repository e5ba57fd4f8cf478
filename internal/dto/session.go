package dto

import "github.com/nippo-hub/nippo-api/internal/models"

// CreateSessionRequest opens an editing session for one report date.
type CreateSessionRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ResetRequest carries the explicit confirmation a destructive reset
// requires.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// SessionResponse is the document view returned for every session read
// or mutation.
type SessionResponse struct {
	ID      string                 `json:"id"`
	Date    string                 `json:"date"`
	Status  models.DraftStatus     `json:"status"`
	State   string                 `json:"state"`
	Events  []models.ScheduleEvent `json:"events"`
	Report  models.ReportBody      `json:"report"`
	Quality models.QualityState    `json:"quality"`
}
