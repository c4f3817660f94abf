// Package server implements the HTTP API: JSON-in, JSON-out endpoints over
// the allocation engine plus run-history persistence.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/territory-cli/internal/allocation"
	"github.com/sells-group/territory-cli/internal/model"
	"github.com/sells-group/territory-cli/internal/store"
	"github.com/sells-group/territory-cli/internal/validate"
)

// API serves allocation requests. Defaults fill any config knobs a request
// leaves unset.
type API struct {
	store    store.Store
	defaults model.AllocationConfig
}

// New builds an API over the given store with configured default knobs.
func New(st store.Store, defaults model.AllocationConfig) *API {
	return &API{store: st, defaults: defaults}
}

// configPatch is the request-side view of the allocation config: every
// field optional, nil meaning "use the server default".
type configPatch struct {
	Threshold         *int     `json:"threshold"`
	ARRWeight         *float64 `json:"arr_weight"`
	AccountWeight     *float64 `json:"account_weight"`
	RiskWeight        *float64 `json:"risk_weight"`
	GeoMatchBonus     *float64 `json:"geo_match_bonus"`
	PreserveBonus     *float64 `json:"preserve_bonus"`
	HighRiskThreshold *float64 `json:"high_risk_threshold"`
}

func (p configPatch) apply(base model.AllocationConfig) model.AllocationConfig {
	if p.Threshold != nil {
		base.Threshold = *p.Threshold
	}
	if p.ARRWeight != nil {
		base.ARRWeight = *p.ARRWeight
	}
	if p.AccountWeight != nil {
		base.AccountWeight = *p.AccountWeight
	}
	if p.RiskWeight != nil {
		base.RiskWeight = *p.RiskWeight
	}
	if p.GeoMatchBonus != nil {
		base.GeoMatchBonus = *p.GeoMatchBonus
	}
	if p.PreserveBonus != nil {
		base.PreserveBonus = *p.PreserveBonus
	}
	if p.HighRiskThreshold != nil {
		base.HighRiskThreshold = *p.HighRiskThreshold
	}
	return base
}

// allocationRequest is the shared request body for every engine endpoint.
type allocationRequest struct {
	Reps     []model.Rep     `json:"reps"`
	Accounts []model.Account `json:"accounts"`
	Config   configPatch     `json:"config"`
}

// decode parses and validates a request body, writing the error response
// itself when the request cannot proceed.
func (a *API) decode(w http.ResponseWriter, r *http.Request) (*allocationRequest, model.AllocationConfig, bool) {
	var req allocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, model.AllocationConfig{}, false
	}

	res := validate.All(req.Reps, req.Accounts)
	if !res.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "input data failed validation",
			"issues": res.Errors,
		})
		return nil, model.AllocationConfig{}, false
	}

	return &req, req.Config.apply(a.defaults), true
}

// Allocate runs the allocation and returns results plus fairness. With
// save=true in the query, the run is persisted and its ID returned.
func (a *API) Allocate(w http.ResponseWriter, r *http.Request) {
	req, ec, ok := a.decode(w, r)
	if !ok {
		return
	}

	results := allocation.Allocate(req.Accounts, req.Reps, ec)
	fairness := allocation.Fairness(req.Reps, results, req.Accounts, ec.Weights(), ec.HighRiskThreshold)

	resp := map[string]any{
		"results":  results,
		"fairness": fairness,
	}

	if r.URL.Query().Get("save") == "true" {
		saved, err := a.store.CreateRun(r.Context(), model.Run{
			Config:       ec,
			RepCount:     len(req.Reps),
			AccountCount: len(req.Accounts),
			Results:      results,
			Fairness:     fairness,
		})
		if err != nil {
			zap.L().Error("save run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save run")
			return
		}
		resp["run_id"] = saved.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

// Fairness scores an allocation without returning the per-account results.
func (a *API) Fairness(w http.ResponseWriter, r *http.Request) {
	req, ec, ok := a.decode(w, r)
	if !ok {
		return
	}

	results := allocation.Allocate(req.Accounts, req.Reps, ec)

	var metrics model.FairnessMetrics
	if r.URL.Query().Get("by_segment") == "true" {
		metrics = allocation.SegmentBasedFairness(req.Reps, results, req.Accounts, ec.Weights(), ec.HighRiskThreshold)
	} else {
		metrics = allocation.Fairness(req.Reps, results, req.Accounts, ec.Weights(), ec.HighRiskThreshold)
	}
	writeJSON(w, http.StatusOK, metrics)
}

// optimizeRequest adds the optional segment ARR ratio caps.
type optimizeRequest struct {
	allocationRequest
	EnterpriseCap *float64 `json:"enterprise_cap"`
	MidMarketCap  *float64 `json:"midmarket_cap"`
}

// Optimize brute-forces the weight space and returns the recommendation.
func (a *API) Optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res := validate.All(req.Reps, req.Accounts)
	if !res.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "input data failed validation",
			"issues": res.Errors,
		})
		return
	}
	ec := req.Config.apply(a.defaults)

	result, err := allocation.OptimizeWeights(r.Context(), req.Accounts, req.Reps, ec.Threshold,
		ec.GeoMatchBonus, ec.PreserveBonus, ec.HighRiskThreshold,
		allocation.OptimizeOptions{EnterpriseCap: req.EnterpriseCap, MidMarketCap: req.MidMarketCap})
	if err != nil {
		zap.L().Error("optimize failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "optimization failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Sensitivity sweeps the segmentation threshold.
func (a *API) Sensitivity(w http.ResponseWriter, r *http.Request) {
	req, ec, ok := a.decode(w, r)
	if !ok {
		return
	}

	points, err := allocation.Sensitivity(r.Context(), req.Accounts, req.Reps, ec)
	if err != nil {
		zap.L().Error("sensitivity failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "sensitivity analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// Audit returns the full decision trail.
func (a *API) Audit(w http.ResponseWriter, r *http.Request) {
	req, ec, ok := a.decode(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, allocation.AuditTrail(req.Accounts, req.Reps, ec))
}

// ListRuns returns saved run summaries, newest first.
func (a *API) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	runs, err := a.store.ListRuns(r.Context(), store.RunFilter{Limit: limit, Offset: offset})
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []model.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun returns one saved run in full.
func (a *API) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := a.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// DeleteRun removes one saved run.
func (a *API) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteRun(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
