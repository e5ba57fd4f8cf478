package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nippo-hub/nippo-api/internal/models"
	"github.com/nippo-hub/nippo-api/internal/service"
	"github.com/nippo-hub/nippo-api/pkg/config"
	"github.com/nippo-hub/nippo-api/pkg/dateutil"
	"github.com/nippo-hub/nippo-api/pkg/response"
)

type calendarStub struct {
	events []models.ScheduleEvent
	err    error
}

func (s *calendarStub) FetchEvents(ctx context.Context, start, end time.Time) ([]models.ScheduleEvent, error) {
	return s.events, s.err
}

type persistenceStub struct {
	saveErr   error
	submitErr error
}

func (s *persistenceStub) SaveDraft(ctx context.Context, doc *models.DraftDocument) error {
	return s.saveErr
}

func (s *persistenceStub) SubmitReport(ctx context.Context, doc *models.DraftDocument) error {
	return s.submitErr
}

func newTestService(t *testing.T) *service.SessionService {
	t.Helper()
	resolver, err := dateutil.NewResolver("Asia/Tokyo", nil)
	require.NoError(t, err)
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(nil, metrics, 0, nil, false)
	persist := &persistenceStub{}
	return service.NewSessionService(
		&calendarStub{}, nil, persist, persist,
		cacheSvc, resolver,
		config.ReportConfig{QuickTemplates: []string{"【所感】"}},
		config.SessionConfig{}, nil, nil, metrics, nil, nil,
	)
}

func doRequest(t *testing.T, h gin.HandlerFunc, method, target string, body string, params gin.Params) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	h(c)
	// Flush any status set via c.Status that gin would normally write
	// after the handler chain; needed for body-less responses like 204.
	c.Writer.WriteHeaderNow()
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func createSession(t *testing.T, h *SessionHandler) string {
	t.Helper()
	w := doRequest(t, h.Create, http.MethodPost, "/sessions", `{"date":"2025-09-01"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	id, ok := data["id"].(string)
	require.True(t, ok)
	return id
}

func TestSessionHandlerCreate(t *testing.T) {
	h := NewSessionHandler(newTestService(t))

	w := doRequest(t, h.Create, http.MethodPost, "/sessions", `{"date":"2025-09-01"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, "2025-09-01", data["date"])
	assert.Equal(t, "DRAFT", data["status"])
	assert.Equal(t, "EDITING", data["state"])
}

func TestSessionHandlerCreateInvalidBody(t *testing.T) {
	h := NewSessionHandler(newTestService(t))

	w := doRequest(t, h.Create, http.MethodPost, "/sessions", `{"date":`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h.Create, http.MethodPost, "/sessions", `{"date":"not-a-date"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerGetUnknown(t *testing.T) {
	h := NewSessionHandler(newTestService(t))

	w := doRequest(t, h.Get, http.MethodGet, "/sessions/nope", "", gin.Params{{Key: "id", Value: "nope"}})
	require.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestSessionHandlerResetWithoutConfirmation(t *testing.T) {
	svc := newTestService(t)
	h := NewSessionHandler(svc)
	id := createSession(t, h)

	w := doRequest(t, h.Reset, http.MethodPost, "/sessions/"+id+"/reset", `{"confirm":false}`, gin.Params{{Key: "id", Value: id}})
	require.Equal(t, http.StatusPreconditionFailed, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFIRMATION_REQUIRED", env.Error.Code)
}

func TestSessionHandlerSubmitThenDelete(t *testing.T) {
	svc := newTestService(t)
	h := NewSessionHandler(svc)
	id := createSession(t, h)

	w := doRequest(t, h.Submit, http.MethodPost, "/sessions/"+id+"/submit", "", gin.Params{{Key: "id", Value: id}})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, "SUBMITTED", data["status"])

	w = doRequest(t, h.Delete, http.MethodDelete, "/sessions/"+id, "", gin.Params{{Key: "id", Value: id}})
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestSessionHandlerExportCSV(t *testing.T) {
	svc := newTestService(t)
	h := NewSessionHandler(svc)
	id := createSession(t, h)

	w := doRequest(t, h.Export, http.MethodGet, "/sessions/"+id+"/export?format=csv", "", gin.Params{{Key: "id", Value: id}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "report-2025-09-01.csv")
}

func TestSessionHandlerExportBadFormat(t *testing.T) {
	svc := newTestService(t)
	h := NewSessionHandler(svc)
	id := createSession(t, h)

	w := doRequest(t, h.Export, http.MethodGet, "/sessions/"+id+"/export?format=xlsx", "", gin.Params{{Key: "id", Value: id}})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventHandlerLifecycle(t *testing.T) {
	svc := newTestService(t)
	sessions := NewSessionHandler(svc)
	events := NewEventHandler(svc)
	id := createSession(t, sessions)

	body := `{"title":"Customer call","start":"2025-09-01T14:00:00+09:00","end":"2025-09-01T15:00:00+09:00"}`
	w := doRequest(t, events.Add, http.MethodPost, "/sessions/"+id+"/events", body, gin.Params{{Key: "id", Value: id}})
	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]interface{})
	eventID := data["id"].(string)
	assert.Equal(t, "MANUAL", data["source"])

	params := gin.Params{{Key: "id", Value: id}, {Key: "eventId", Value: eventID}}
	w = doRequest(t, events.Edit, http.MethodPatch, "/sessions/"+id+"/events/"+eventID, `{"title":"Customer call (follow-up)"}`, params)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, events.Remove, http.MethodDelete, "/sessions/"+id+"/events/"+eventID, "", params)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, events.Remove, http.MethodDelete, "/sessions/"+id+"/events/"+eventID, "", params)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventHandlerAddInvalidRange(t *testing.T) {
	svc := newTestService(t)
	sessions := NewSessionHandler(svc)
	events := NewEventHandler(svc)
	id := createSession(t, sessions)

	body := `{"title":"Backwards","start":"2025-09-01T15:00:00+09:00","end":"2025-09-01T14:00:00+09:00"}`
	w := doRequest(t, events.Add, http.MethodPost, "/sessions/"+id+"/events", body, gin.Params{{Key: "id", Value: id}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_RANGE", env.Error.Code)
}

func TestReportHandlerSetAndQuickInsert(t *testing.T) {
	svc := newTestService(t)
	sessions := NewSessionHandler(svc)
	reports := NewReportHandler(svc)
	id := createSession(t, sessions)
	params := gin.Params{{Key: "id", Value: id}}

	w := doRequest(t, reports.Set, http.MethodPut, "/sessions/"+id+"/report", `{"text":"本日の作業"}`, params)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, "BELOW_MINIMUM", data["quality"])

	w = doRequest(t, reports.QuickInsert, http.MethodPost, "/sessions/"+id+"/report/quick-insert", `{"template":"【所感】"}`, params)
	require.Equal(t, http.StatusOK, w.Code)
}
