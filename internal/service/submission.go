package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nippo-hub/nippo-api/internal/models"
	appErrors "github.com/nippo-hub/nippo-api/pkg/errors"
)

// DraftSaver persists a draft without finalizing it.
type DraftSaver interface {
	SaveDraft(ctx context.Context, doc *models.DraftDocument) error
}

// Submitter finalizes the report for the day.
type Submitter interface {
	SubmitReport(ctx context.Context, doc *models.DraftDocument) error
}

// SubmissionState tracks where a document is in its save/submit lifecycle.
type SubmissionState string

const (
	StateEditing    SubmissionState = "EDITING"
	StateSaving     SubmissionState = "SAVING"
	StateSubmitting SubmissionState = "SUBMITTING"
	StateSubmitted  SubmissionState = "SUBMITTED"
)

// SubmissionController drives the save-draft and submit transitions for
// one document. At most one save or submit may be outstanding: overlap
// is rejected rather than queued, since only the latest state matters and
// interleaved writes could reorder two versions of the same draft.
// Collaborator failures return the controller to EDITING with the
// document untouched; SUBMITTED is terminal.
type SubmissionController struct {
	mu        sync.Mutex
	state     SubmissionState
	saver     DraftSaver
	submitter Submitter
	logger    *zap.Logger
}

// NewSubmissionController starts a controller in the EDITING state.
func NewSubmissionController(saver DraftSaver, submitter Submitter, logger *zap.Logger) *SubmissionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionController{state: StateEditing, saver: saver, submitter: submitter, logger: logger}
}

// NewSubmittedController starts in the terminal SUBMITTED state, used
// when a session opens a date whose report was already finalized.
func NewSubmittedController(saver DraftSaver, submitter Submitter, logger *zap.Logger) *SubmissionController {
	c := NewSubmissionController(saver, submitter, logger)
	c.state = StateSubmitted
	return c
}

// State returns the current lifecycle state.
func (c *SubmissionController) State() SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submitted reports whether the document is finalized.
func (c *SubmissionController) Submitted() bool {
	return c.State() == StateSubmitted
}

// SaveDraft hands the document to the persistence collaborator. Valid
// only from EDITING; the draft content is never lost on a failed save.
func (c *SubmissionController) SaveDraft(ctx context.Context, doc *models.DraftDocument) error {
	if err := c.begin(StateSaving); err != nil {
		return err
	}

	err := c.saver.SaveDraft(ctx, doc)

	c.mu.Lock()
	c.state = StateEditing
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("draft save failed", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistenceFailed.Code, appErrors.ErrPersistenceFailed.Status, appErrors.ErrPersistenceFailed.Message)
	}
	return nil
}

// Submit hands the document to the submission collaborator. On success
// the document is finalized and no further edits are permitted; on
// failure the controller returns to EDITING for a retry.
func (c *SubmissionController) Submit(ctx context.Context, doc *models.DraftDocument) error {
	if err := c.begin(StateSubmitting); err != nil {
		return err
	}

	err := c.submitter.SubmitReport(ctx, doc)

	c.mu.Lock()
	if err != nil {
		c.state = StateEditing
	} else {
		c.state = StateSubmitted
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("report submit failed", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, appErrors.ErrSubmissionFailed.Message)
	}
	return nil
}

func (c *SubmissionController) begin(next SubmissionState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateSubmitted:
		return appErrors.ErrFinalized
	case StateSaving, StateSubmitting:
		return appErrors.ErrInProgress
	}
	c.state = next
	return nil
}
