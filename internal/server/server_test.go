package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PlateCut/internal/engine"
	"github.com/piwi3910/PlateCut/internal/model"
	"github.com/piwi3910/PlateCut/internal/project"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	opts := Options{Defaults: model.DefaultSettings(), Templates: model.DefaultTemplates()}
	if withStore {
		store, err := project.NewResultStore(t.TempDir())
		require.NoError(t, err)
		opts.Store = store
	}
	return New(opts)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func squareItems() []model.Item {
	return []model.Item{{Name: "Square", Width: 300, Height: 300, Quantity: 4}}
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestServer(t, false), http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCalculate(t *testing.T) {
	w := do(t, newTestServer(t, false), http.MethodPost, "/api/v1/calculate", CalculateRequest{Items: squareItems()})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result model.CalculationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TotalPlates)
	assert.Equal(t, 4, result.PlacedItemCount())
	assert.Equal(t, "5000", result.TotalCost.String())
	assert.NotEmpty(t, result.Patterns[0].Placements[0].Item.BaseID(), "missing ids are generated")
}

func TestCalculate_WithOffcuts(t *testing.T) {
	req := CalculateRequest{
		Items:   squareItems(),
		Offcuts: []model.OffcutPlate{{ID: "s", Name: "Scrap", Width: 700, Height: 700, Quantity: 1}},
	}

	w := do(t, newTestServer(t, false), http.MethodPost, "/api/v1/calculate", req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result model.CalculationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.OffcutUsage)
	assert.Equal(t, 4, result.OffcutUsage.TotalItemsOnOffcuts)
	assert.True(t, result.TotalCost.IsZero())
}

func TestCalculate_BadRequests(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name string
		body any
		code int
	}{
		{"malformed json", `{"items": [`, http.StatusBadRequest},
		{"missing items", `{}`, http.StatusBadRequest},
		{"empty items", CalculateRequest{Items: []model.Item{}}, http.StatusBadRequest},
		{"nothing fits", CalculateRequest{Items: []model.Item{{Name: "Huge", Width: 5000, Height: 5000, Quantity: 1}}}, http.StatusUnprocessableEntity},
		{"save without store", CalculateRequest{Items: squareItems(), SaveAs: "run"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/calculate", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestResultsLifecycle(t *testing.T) {
	s := newTestServer(t, true)

	w := do(t, s, http.MethodPost, "/api/v1/calculate", CalculateRequest{Items: squareItems(), SaveAs: "run-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/api/v1/results/run-1", w.Header().Get("Location"))

	w = do(t, s, http.MethodGet, "/api/v1/results", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ids":["run-1"]}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/api/v1/results/run-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored model.CalculationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, 1, stored.TotalPlates)

	w = do(t, s, http.MethodGet, "/api/v1/results/run-1/chart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "Yield per pattern")

	w = do(t, s, http.MethodDelete, "/api/v1/results/run-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/results/run-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResults_InvalidID(t *testing.T) {
	s := newTestServer(t, true)

	w := do(t, s, http.MethodPost, "/api/v1/calculate", CalculateRequest{Items: squareItems(), SaveAs: "../escape"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodDelete, "/api/v1/results/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResults_DisabledWithoutStore(t *testing.T) {
	w := do(t, newTestServer(t, false), http.MethodGet, "/api/v1/results", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompare(t *testing.T) {
	w := do(t, newTestServer(t, false), http.MethodPost, "/api/v1/compare", CalculateRequest{Items: squareItems()})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rows []ScenarioResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, len(engine.BuildDefaultScenarios(model.DefaultSettings())))
	assert.Equal(t, "Current Settings", rows[0].Name)
	for _, r := range rows {
		assert.Empty(t, r.Error, r.Name)
		assert.Equal(t, 1, r.Plates, r.Name)
	}
}

func TestVerify(t *testing.T) {
	s := newTestServer(t, false)
	items := []model.Item{{ID: "sq", Name: "Square", Width: 300, Height: 300, Quantity: 4}}
	result, err := engine.New(model.DefaultSettings()).Calculate(t.Context(), items)
	require.NoError(t, err)

	w := do(t, s, http.MethodPost, "/api/v1/verify", VerifyRequest{Items: items, Result: result})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"valid":true,"violations":[]}`, w.Body.String())

	items[0].Quantity = 5
	w = do(t, s, http.MethodPost, "/api/v1/verify", VerifyRequest{Items: items, Result: result})
	require.Equal(t, http.StatusOK, w.Code)
	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, engine.ViolationQuantity, resp.Violations[0].Kind)
}

func TestEstimate(t *testing.T) {
	w := do(t, newTestServer(t, false), http.MethodPost, "/api/v1/estimate", EstimateRequest{Items: squareItems(), WastePercent: 10})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var est model.PlateEstimate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &est))
	assert.Equal(t, 1, est.PlatesMin)
	assert.Equal(t, 10.0, est.WastePercent)
}

func TestEstimate_RejectsWaste(t *testing.T) {
	w := do(t, newTestServer(t, false), http.MethodPost, "/api/v1/estimate", EstimateRequest{Items: squareItems(), WastePercent: 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplates(t *testing.T) {
	s := newTestServer(t, false)

	w := do(t, s, http.MethodGet, "/api/v1/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var templates []model.JobTemplate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &templates))
	assert.Len(t, templates, 3)

	w = do(t, s, http.MethodGet, "/api/v1/templates/Basic", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var basic model.JobTemplate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &basic))
	assert.Len(t, basic.Items, 3)

	w = do(t, s, http.MethodGet, "/api/v1/templates/Nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
