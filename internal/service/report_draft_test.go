package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nippo-hub/nippo-api/internal/models"
	"github.com/nippo-hub/nippo-api/pkg/config"
	appErrors "github.com/nippo-hub/nippo-api/pkg/errors"
)

func newDraft() *ReportDraft {
	return NewReportDraft(config.ReportConfig{})
}

func TestReportDraftSetTextWithinCap(t *testing.T) {
	d := newDraft()
	require.NoError(t, d.SetText(strings.Repeat("a", 2000)))
	assert.Equal(t, 2000, d.Length())
}

func TestReportDraftSetTextOverCapRejected(t *testing.T) {
	d := newDraft()
	require.NoError(t, d.SetText("keep me"))

	err := d.SetText(strings.Repeat("a", 2001))
	require.ErrorIs(t, err, appErrors.ErrLengthExceeded)
	assert.Equal(t, "keep me", d.Text())
}

func TestReportDraftCountsRunesNotBytes(t *testing.T) {
	d := newDraft()
	// 2000 three-byte characters are exactly at the cap.
	require.NoError(t, d.SetText(strings.Repeat("あ", 2000)))
	assert.Equal(t, 2000, d.Length())

	require.ErrorIs(t, d.QuickInsert("あ"), appErrors.ErrLengthExceeded)
}

func TestReportDraftQuickInsertAppends(t *testing.T) {
	d := newDraft()
	require.NoError(t, d.SetText("本日の作業:"))
	require.NoError(t, d.QuickInsert("【所感】"))
	assert.Equal(t, "本日の作業:【所感】", d.Text())
}

func TestReportDraftQuickInsertOverflowLeavesBodyUnchanged(t *testing.T) {
	d := newDraft()
	require.NoError(t, d.SetText(strings.Repeat("a", 1995)))

	err := d.QuickInsert(strings.Repeat("b", 6))
	require.ErrorIs(t, err, appErrors.ErrLengthExceeded)
	assert.Equal(t, 1995, d.Length())

	// Exactly filling the cap is fine.
	require.NoError(t, d.QuickInsert(strings.Repeat("b", 5)))
	assert.Equal(t, 2000, d.Length())
}

func TestReportDraftQualityThresholds(t *testing.T) {
	d := newDraft()

	require.NoError(t, d.SetText(strings.Repeat("a", 59)))
	assert.Equal(t, models.QualityBelowMinimum, d.QualityState())

	require.NoError(t, d.SetText(strings.Repeat("a", 60)))
	assert.Equal(t, models.QualityAcceptable, d.QualityState())

	require.NoError(t, d.SetText(strings.Repeat("a", 1500)))
	assert.Equal(t, models.QualityAcceptable, d.QualityState())

	require.NoError(t, d.SetText(strings.Repeat("a", 1501)))
	assert.Equal(t, models.QualityOverGuidance, d.QualityState())
}

func TestReportDraftConfiguredLimits(t *testing.T) {
	d := NewReportDraft(config.ReportConfig{MaxLength: 10, QualityMin: 3, QualityMax: 8})

	require.ErrorIs(t, d.SetText("12345678901"), appErrors.ErrLengthExceeded)
	require.NoError(t, d.SetText("12"))
	assert.Equal(t, models.QualityBelowMinimum, d.QualityState())
	require.NoError(t, d.SetText("123456789"))
	assert.Equal(t, models.QualityOverGuidance, d.QualityState())
}
