package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nippo-hub/nippo-api/pkg/dateutil"
)

func newLookupHandler(t *testing.T) *LookupHandler {
	t.Helper()
	resolver, err := dateutil.NewResolver("Asia/Tokyo", nil)
	require.NoError(t, err)
	return NewLookupHandler(newTestService(t), resolver)
}

func TestLookupHandlerTimeOptions(t *testing.T) {
	h := newLookupHandler(t)

	w := doRequest(t, h.TimeOptions, http.MethodGet, "/time-options", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 96)
	assert.Equal(t, "00:00", env.Data[0])
	assert.Equal(t, "23:45", env.Data[95])
}

func TestLookupHandlerResolveDate(t *testing.T) {
	h := newLookupHandler(t)

	w := doRequest(t, h.ResolveDate, http.MethodGet, "/dates?base=2025-09-01&offset=-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, "2025-09-01", data["base"])
	assert.Equal(t, "2025-08-31", data["date"])
}

func TestLookupHandlerResolveDateInvalidInput(t *testing.T) {
	h := newLookupHandler(t)

	w := doRequest(t, h.ResolveDate, http.MethodGet, "/dates?base=garbage", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h.ResolveDate, http.MethodGet, "/dates?base=2025-09-01&offset=many", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookupHandlerTemplates(t *testing.T) {
	h := newLookupHandler(t)

	w := doRequest(t, h.Templates, http.MethodGet, "/templates", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, []string{"【所感】"}, env.Data)
}
