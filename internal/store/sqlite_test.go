package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/territory-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func fptr(v float64) *float64 { return &v }

func sampleRun() model.Run {
	return model.Run{
		Config: model.AllocationConfig{
			Threshold:         5000,
			ARRWeight:         33,
			AccountWeight:     33,
			RiskWeight:        34,
			GeoMatchBonus:     0.05,
			PreserveBonus:     0.05,
			HighRiskThreshold: 70,
		},
		RepCount:     4,
		AccountCount: 2,
		Results: []model.AllocationResult{
			{AccountID: "A1", AssignedRep: "Alice", Segment: model.SegmentEnterprise, BlendedScore: 0.8, TotalScore: 0.84, GeoBonus: 0.05},
			{AccountID: "A2", AssignedRep: "Bob", Segment: model.SegmentMidMarket, BlendedScore: 0.5, TotalScore: 0.5},
		},
		Fairness: model.FairnessMetrics{
			ARRFairness:       fptr(92.5),
			AccountFairness:   fptr(100),
			CustomComposite:   fptr(95),
			BalancedComposite: fptr(96.25),
		},
	}
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateRun(ctx, sampleRun())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := st.GetRun(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 5000, got.Config.Threshold)
	assert.Equal(t, 4, got.RepCount)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "Alice", got.Results[0].AssignedRep)
	assert.Equal(t, model.SegmentEnterprise, got.Results[0].Segment)

	// Nil risk fairness survives the round trip as nil, not zero.
	assert.Nil(t, got.Fairness.RiskFairness)
	require.NotNil(t, got.Fairness.BalancedComposite)
	assert.InDelta(t, 96.25, *got.Fairness.BalancedComposite, 1e-9)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := st.CreateRun(ctx, sampleRun())
	require.NoError(t, err)

	second := sampleRun()
	second.Config.Threshold = 8000
	second.Fairness.BalancedComposite = nil
	created2, err := st.CreateRun(ctx, second)
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	ids := []string{runs[0].ID, runs[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, created2.ID)

	for _, rs := range runs {
		if rs.ID == created2.ID {
			assert.Equal(t, 8000, rs.Threshold)
			assert.Nil(t, rs.BalancedFairness)
		} else {
			require.NotNil(t, rs.BalancedFairness)
			assert.InDelta(t, 96.25, *rs.BalancedFairness, 1e-9)
		}
	}
}

func TestSQLite_ListRuns_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := st.CreateRun(ctx, sampleRun())
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSQLite_DeleteRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateRun(ctx, sampleRun())
	require.NoError(t, err)

	require.NoError(t, st.DeleteRun(ctx, created.ID))

	_, err = st.GetRun(ctx, created.ID)
	require.Error(t, err)

	err = st.DeleteRun(ctx, created.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}
