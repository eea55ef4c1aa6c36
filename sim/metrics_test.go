package sim

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDistribution_Empty(t *testing.T) {
	assert.Equal(t, Distribution{}, NewDistribution(nil))
}

func TestNewDistribution_SingleValue_NoStdDev(t *testing.T) {
	d := NewDistribution([]float64{4})
	assert.Equal(t, 4.0, d.Mean)
	assert.Equal(t, 0.0, d.StdDev)
	assert.Equal(t, 4.0, d.P50)
	assert.Equal(t, 1, d.Count)
}

func TestNewDistribution_Values(t *testing.T) {
	// GIVEN unsorted input
	values := []float64{5, 1, 3, 2, 4}

	d := NewDistribution(values)

	assert.Equal(t, 3.0, d.Mean)
	assert.Equal(t, 3.0, d.P50)
	assert.InDelta(t, 4.8, d.P95, 1e-9)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 5.0, d.Max)
	assert.InDelta(t, math.Sqrt(2.5), d.StdDev, 1e-9) // sample std dev
	assert.Equal(t, 5, d.Count)

	// input untouched
	assert.Equal(t, []float64{5, 1, 3, 2, 4}, values)
}

func TestAggregate_WinsAndNoData(t *testing.T) {
	// GIVEN two trials: site 1 wins both, site 3 never has data
	sites := []Site{{ID: 1, Rate: 0.5}, {ID: 2, Rate: 0.1}, {ID: 3}}
	reports := []TrialReport{
		{Trial: 0, Results: []TrialResult{
			{Site: 1, ProcessedCount: 2, AverageTime: 2},
			{Site: 2, ProcessedCount: 2, AverageTime: 6},
			{Site: 3, AverageTime: math.NaN()},
		}},
		{Trial: 1, Results: []TrialResult{
			{Site: 1, ProcessedCount: 1, AverageTime: 4},
			{Site: 2, ProcessedCount: 1, AverageTime: 8},
			{Site: 3, AverageTime: math.NaN()},
		}},
	}

	aggs := Aggregate(reports, sites)

	require.Len(t, aggs, 3)
	assert.Equal(t, SiteID(1), aggs[0].Site)
	assert.Equal(t, 3.0, aggs[0].AverageTime.Mean)
	assert.Equal(t, 2, aggs[0].Wins)
	assert.Equal(t, 0.5, aggs[0].Rate)

	assert.Equal(t, SiteID(2), aggs[1].Site)
	assert.Equal(t, 7.0, aggs[1].AverageTime.Mean)
	assert.Equal(t, 0, aggs[1].Wins)

	assert.Equal(t, SiteID(3), aggs[2].Site)
	assert.Equal(t, 0, aggs[2].AverageTime.Count)
	assert.Equal(t, 2, aggs[2].NoData)
}

func TestPrintTrial_Format(t *testing.T) {
	report := TrialReport{
		Trial:     2,
		Incidents: 7,
		Results: []TrialResult{
			{Site: 1, TotalTime: 10, ProcessedCount: 5, AverageTime: 2},
			{Site: 2, AverageTime: math.NaN()},
		},
	}
	var buf bytes.Buffer

	PrintTrial(&buf, report)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "=== Trial 2 (7 incidents) ===", lines[0])
	assert.Equal(t, "1 10.0000 5 2.0000", lines[1])
	assert.Equal(t, "2 0.0000 0 n/a", lines[2])
}

func TestPrintAggregate_NoDataRow(t *testing.T) {
	aggs := []SiteAggregate{
		{Site: 1, Rate: 0.5, AverageTime: NewDistribution([]float64{2, 4}), Wins: 2},
		{Site: 3, NoData: 2},
	}
	var buf bytes.Buffer

	PrintAggregate(&buf, aggs, 2)

	out := buf.String()
	assert.Contains(t, out, "=== Summary over 2 trial(s) ===")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "1 "))
	assert.Contains(t, lines[2], "3.00")
	assert.Contains(t, lines[3], "n/a")
}
