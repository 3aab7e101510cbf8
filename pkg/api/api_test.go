package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarsenOP/tapece/pkg/api"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter() *gin.Engine {
	return api.NewRouter(hclog.NewNullLogger(), false)
}

func TestHealthz(t *testing.T) {
	router := testRouter()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSolveCircuit_SingleResistorAcrossVoltageSource(t *testing.T) {
	router := testRouter()
	body := []byte(`{"components": [
		{"type": "VS", "value": 10, "nodeA": 1, "nodeB": 0},
		{"type": "R", "value": 1000, "nodeA": 1, "nodeB": 0}
	]}`)

	req := httptest.NewRequest(http.MethodPost, "/api/solve-circuit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.InDelta(t, 10.0, resp.Solution.Voltages["1"], 1e-9)
	assert.Equal(t, 2, resp.Solution.Summary.TotalComponents)
	assert.True(t, resp.Solution.Summary.PowerBalance)
	assert.Len(t, resp.Solution.Components, 2)
	assert.Equal(t, 1, resp.CircuitInfo.NonReferenceNodes[0])
}

func TestSolveCircuit_RejectsUnknownComponentType(t *testing.T) {
	router := testRouter()
	body := []byte(`{"components": [{"type": "CAPACITOR", "value": 1, "nodeA": 1, "nodeB": 0}]}`)

	req := httptest.NewRequest(http.MethodPost, "/api/solve-circuit", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, resp.Suggestion)
}

func TestSolveCircuit_RejectsMalformedBody(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/solve-circuit", bytes.NewReader([]byte(`not json`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSolveCircuit_FloatingNodeIsSingular(t *testing.T) {
	router := testRouter()
	body := []byte(`{"components": [
		{"type": "VS", "value": 10, "nodeA": 1, "nodeB": 0},
		{"type": "R", "value": 1000, "nodeA": 2, "nodeB": 3}
	]}`)

	req := httptest.NewRequest(http.MethodPost, "/api/solve-circuit", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
