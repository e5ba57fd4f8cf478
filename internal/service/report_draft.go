package service

import (
	"unicode/utf8"

	"github.com/nippo-hub/nippo-api/internal/models"
	"github.com/nippo-hub/nippo-api/pkg/config"
	appErrors "github.com/nippo-hub/nippo-api/pkg/errors"
)

const (
	defaultMaxLength  = 2000
	defaultQualityMin = 60
	defaultQualityMax = 1500
)

// ReportDraft owns the free-text report body for one session. The hard
// cap rejects oversized input outright instead of truncating, so the
// caller never loses characters that were already accepted. Lengths are
// rune counts, not bytes.
type ReportDraft struct {
	text       string
	maxLength  int
	qualityMin int
	qualityMax int
}

// NewReportDraft builds a draft body with limits from config, falling
// back to the standard 2000/60/1500 thresholds.
func NewReportDraft(cfg config.ReportConfig) *ReportDraft {
	d := &ReportDraft{
		maxLength:  cfg.MaxLength,
		qualityMin: cfg.QualityMin,
		qualityMax: cfg.QualityMax,
	}
	if d.maxLength <= 0 {
		d.maxLength = defaultMaxLength
	}
	if d.qualityMin <= 0 {
		d.qualityMin = defaultQualityMin
	}
	if d.qualityMax <= 0 {
		d.qualityMax = defaultQualityMax
	}
	return d
}

// SetText atomically replaces the body. Input over the cap is rejected
// and the stored text is left unchanged.
func (d *ReportDraft) SetText(text string) error {
	if utf8.RuneCountInString(text) > d.maxLength {
		return appErrors.ErrLengthExceeded
	}
	d.text = text
	return nil
}

// QuickInsert appends a template snippet under the same cap. When the
// result would overflow, the body is left unchanged.
func (d *ReportDraft) QuickInsert(template string) error {
	if utf8.RuneCountInString(d.text)+utf8.RuneCountInString(template) > d.maxLength {
		return appErrors.ErrLengthExceeded
	}
	d.text += template
	return nil
}

// Text returns the current body.
func (d *ReportDraft) Text() string {
	return d.text
}

// Length returns the body length in runes.
func (d *ReportDraft) Length() int {
	return utf8.RuneCountInString(d.text)
}

// QualityState classifies the body length against the advisory writing
// guidance. Purely informational; it never blocks save or submit.
func (d *ReportDraft) QualityState() models.QualityState {
	length := d.Length()
	switch {
	case length < d.qualityMin:
		return models.QualityBelowMinimum
	case length > d.qualityMax:
		return models.QualityOverGuidance
	default:
		return models.QualityAcceptable
	}
}

// Body returns the body in its document form.
func (d *ReportDraft) Body() models.ReportBody {
	return models.ReportBody{Text: d.text, Length: d.Length()}
}
