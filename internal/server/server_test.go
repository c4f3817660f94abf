package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/territory-cli/internal/model"
	"github.com/sells-group/territory-cli/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	api := New(st, model.AllocationConfig{
		Threshold:         5000,
		ARRWeight:         33,
		AccountWeight:     33,
		RiskWeight:        34,
		GeoMatchBonus:     0.05,
		PreserveBonus:     0.05,
		HighRiskThreshold: 70,
	})

	srv := httptest.NewServer(api.Router(rate.Limit(1000), 1000))
	t.Cleanup(srv.Close)
	return srv
}

func requestBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"reps": []model.Rep{
			{Name: "Alice", Segment: model.SegmentEnterprise, Location: "CA"},
			{Name: "Bob", Segment: model.SegmentEnterprise, Location: "NY"},
			{Name: "Carol", Segment: model.SegmentMidMarket, Location: "TX"},
		},
		"accounts": []model.Account{
			{ID: "A1", Name: "Acme", OriginalRep: "Alice", ARR: 500000, NumEmployees: 8000, Location: "CA"},
			{ID: "A2", Name: "Globex", OriginalRep: "Bob", ARR: 300000, NumEmployees: 6000, Location: "NY"},
			{ID: "A3", Name: "Initech", OriginalRep: "Carol", ARR: 100000, NumEmployees: 1200, Location: "TX"},
		},
	})
	require.NoError(t, err)
	return body
}

func postJSON(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAllocateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/allocate", requestBody(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Results  []model.AllocationResult `json:"results"`
		Fairness model.FairnessMetrics    `json:"fairness"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	// Every account is assigned within its segment.
	require.Len(t, out.Results, 3)
	for _, r := range out.Results {
		if r.AccountID == "A3" {
			assert.Equal(t, model.SegmentMidMarket, r.Segment)
			assert.Equal(t, "Carol", r.AssignedRep)
		} else {
			assert.Equal(t, model.SegmentEnterprise, r.Segment)
		}
	}
	assert.NotNil(t, out.Fairness.ARRFairness)
	assert.Nil(t, out.Fairness.RiskFairness)
}

func TestAllocateSaveAndRunHistory(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/allocate?save=true", requestBody(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.RunID)

	// The run shows up in the listing.
	listResp, err := http.Get(srv.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer listResp.Body.Close() //nolint:errcheck
	var summaries []model.RunSummary
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, out.RunID, summaries[0].ID)
	assert.Equal(t, 5000, summaries[0].Threshold)

	// And can be fetched in full.
	getResp, err := http.Get(srv.URL + "/api/v1/runs/" + out.RunID)
	require.NoError(t, err)
	defer getResp.Body.Close() //nolint:errcheck
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var run model.Run
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&run))
	assert.Len(t, run.Results, 3)

	// Deleting removes it.
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/runs/"+out.RunID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	missResp, err := http.Get(srv.URL + "/api/v1/runs/" + out.RunID)
	require.NoError(t, err)
	defer missResp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusNotFound, missResp.StatusCode)
}

func TestAllocateBadBody(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/allocate", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAllocateValidationFailure(t *testing.T) {
	srv := newTestServer(t)

	body, err := json.Marshal(map[string]any{
		"reps": []model.Rep{
			{Name: "Alice", Segment: model.SegmentEnterprise, Location: "CA"},
			{Name: "Alice", Segment: model.SegmentEnterprise, Location: "NY"},
		},
		"accounts": []model.Account{
			{ID: "A1", Name: "Acme", OriginalRep: "Alice", ARR: 100, NumEmployees: 10, Location: "CA"},
		},
	})
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/api/v1/allocate", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var out struct {
		Issues []json.RawMessage `json:"issues"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.Issues)
}

func TestFairnessEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/fairness?by_segment=true", requestBody(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var metrics model.FairnessMetrics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&metrics))
	assert.NotNil(t, metrics.AccountFairness)
}

func TestOptimizeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/optimize", requestBody(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.OptimizationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 100, result.ARRWeight+result.AccountWeight+result.RiskWeight)
	// No account carries a risk score, so risk weight stays out of play.
	assert.Zero(t, result.RiskWeight)
}

func TestSensitivityEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/sensitivity", requestBody(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var points []model.SensitivityPoint
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&points))
	require.NotEmpty(t, points)
	assert.Equal(t, 1000, points[0].Threshold)
	assert.Equal(t, 8000, points[len(points)-1].Threshold)
}

func TestAuditEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/audit", requestBody(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var steps []model.AuditStep
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&steps))
	require.Len(t, steps, 3)
	for _, step := range steps {
		assert.NotEmpty(t, step.Winner)
		assert.NotEmpty(t, step.Reasoning)
	}
}

func TestRateLimit(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	api := New(st, model.AllocationConfig{Threshold: 5000})
	srv := httptest.NewServer(api.Router(rate.Limit(0.001), 2))
	t.Cleanup(srv.Close)

	var limited bool
	for i := 0; i < 5; i++ {
		resp, err := http.Get(fmt.Sprintf("%s/health", srv.URL))
		require.NoError(t, err)
		resp.Body.Close() //nolint:errcheck
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited)
}
