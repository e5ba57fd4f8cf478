package dto

import "github.com/nippo-hub/nippo-api/internal/models"

// SetReportRequest replaces the report body.
type SetReportRequest struct {
	Text string `json:"text"`
}

// QuickInsertRequest appends a template snippet to the report body.
type QuickInsertRequest struct {
	Template string `json:"template" validate:"required"`
}

// ReportStateResponse reflects the body after a text operation.
type ReportStateResponse struct {
	Report  models.ReportBody   `json:"report"`
	Quality models.QualityState `json:"quality"`
}
