package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortResults_NoDataLast_StableOnTies(t *testing.T) {
	// GIVEN a mix of defined, tied and undefined averages
	results := []TrialResult{
		{Site: 1, AverageTime: math.NaN()},
		{Site: 2, TotalTime: 9, ProcessedCount: 3, AverageTime: 3},
		{Site: 3, TotalTime: 4, ProcessedCount: 2, AverageTime: 2},
		{Site: 4, AverageTime: math.NaN()},
		{Site: 5, TotalTime: 6, ProcessedCount: 2, AverageTime: 3},
	}

	// WHEN sorted
	SortResults(results)

	// THEN best first, ties keep input order, NaN at the end
	got := make([]SiteID, len(results))
	for i, r := range results {
		got[i] = r.Site
	}
	assert.Equal(t, []SiteID{3, 2, 5, 1, 4}, got)
}

func TestSortResults_AllNoData_OrderUnchanged(t *testing.T) {
	results := []TrialResult{
		{Site: 3, AverageTime: math.NaN()},
		{Site: 1, AverageTime: math.NaN()},
	}
	SortResults(results)
	assert.Equal(t, SiteID(3), results[0].Site)
	assert.Equal(t, SiteID(1), results[1].Site)
}

func TestTrialResult_HasData(t *testing.T) {
	assert.True(t, TrialResult{ProcessedCount: 1, AverageTime: 0}.HasData())
	assert.False(t, TrialResult{ProcessedCount: 0, AverageTime: math.NaN()}.HasData())
}

func TestTrialReport_Best(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, ok := TrialReport{}.Best()
		assert.False(t, ok)
	})
	t.Run("top has data", func(t *testing.T) {
		r := TrialReport{Results: []TrialResult{{Site: 4, ProcessedCount: 1, AverageTime: 1.5}}}
		best, ok := r.Best()
		require.True(t, ok)
		assert.Equal(t, SiteID(4), best.Site)
	})
	t.Run("top has no data", func(t *testing.T) {
		r := TrialReport{Results: []TrialResult{{Site: 4, AverageTime: math.NaN()}}}
		_, ok := r.Best()
		assert.False(t, ok)
	})
}

func TestSummaries_UnknownSite_ZeroRate(t *testing.T) {
	report := TrialReport{Results: []TrialResult{{Site: 9, ProcessedCount: 1, AverageTime: 4}}}
	sums := Summaries(report, []Site{{ID: 1, Rate: 0.5}})
	require.Len(t, sums, 1)
	assert.Equal(t, 0.0, sums[0].Rate)
	assert.Equal(t, 4.0, sums[0].AverageTime)
}
