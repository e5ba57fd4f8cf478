package dto

import "time"

// CreateEventRequest adds a manual event to the schedule.
type CreateEventRequest struct {
	Title string    `json:"title" validate:"required"`
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

// UpdateEventRequest patches an existing event. Absent fields are left
// unchanged.
type UpdateEventRequest struct {
	Title *string    `json:"title,omitempty"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}
