package render

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatch-sim/dispatch-sim/sim"
	"github.com/dispatch-sim/dispatch-sim/sim/scenario"
)

func triangle() *scenario.Scenario {
	return &scenario.Scenario{
		Name:  "triangle",
		Sites: []scenario.SiteSpec{{ID: 1, Rate: 0.5}, {ID: 2, Rate: 0.1}, {ID: 3, Rate: 0}},
		Roads: []scenario.RoadSpec{
			{From: 1, To: 2, TravelTime: 5},
			{From: 2, To: 3, TravelTime: 2.5},
			{From: 3, To: 1, TravelTime: 4},
		},
	}
}

func TestDOT_LabelsNodesAndRoads(t *testing.T) {
	out, err := DOT(triangle(), nil)
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, "strict graph triangle {"), doc)
	assert.Contains(t, doc, `label="1: i=0.5000"`)
	assert.Contains(t, doc, `label="2: i=0.1000"`)
	assert.Contains(t, doc, `label="3: i=0.0000"`)
	assert.Contains(t, doc, "1 -- 2 [label=5];")
	assert.Contains(t, doc, "1 -- 3 [label=4];")
	assert.Contains(t, doc, "2 -- 3 [label=2.5];")
	assert.NotContains(t, doc, "fillcolor")
	assert.NotContains(t, doc, "legend")
}

func TestDOT_HighlightsBestAndAddsLegend(t *testing.T) {
	// GIVEN a ranking where site 2 is best and site 3 has no data
	summaries := []sim.SiteSummary{
		{Site: 2, Rate: 0.1, AverageTime: 3.25},
		{Site: 1, Rate: 0.5, AverageTime: 4},
		{Site: 3, Rate: 0, AverageTime: math.NaN()},
	}

	out, err := DOT(triangle(), summaries)
	require.NoError(t, err)
	doc := string(out)

	// THEN only site 2 is filled
	assert.Equal(t, 1, strings.Count(doc, "fillcolor="+BestFill))
	node2 := doc[strings.Index(doc, `label="2: i=0.1000"`):]
	assert.Contains(t, node2[:strings.Index(node2, "]")], "fillcolor=red")

	// AND the legend lists the ranking best first
	assert.Contains(t, doc, `legend [`)
	assert.Contains(t, doc, `label="2: intensity=0.1000, avg_time=3.25\n1: intensity=0.5000, avg_time=4.00\n3: intensity=0.0000, avg_time=n/a\n"`)
}

func TestDOT_NoDataRanking_NothingFilled(t *testing.T) {
	summaries := []sim.SiteSummary{{Site: 1, Rate: 0.5, AverageTime: math.NaN()}}

	out, err := DOT(triangle(), summaries)

	require.NoError(t, err)
	assert.NotContains(t, string(out), "fillcolor")
}

func TestDOT_ParallelRoads_KeepsFastest(t *testing.T) {
	s := triangle()
	s.Roads = append(s.Roads, scenario.RoadSpec{From: 2, To: 1, TravelTime: 3})

	out, err := DOT(s, nil)

	require.NoError(t, err)
	assert.Contains(t, string(out), "1 -- 2 [label=3];")
	assert.NotContains(t, string(out), "label=5]")
}

func TestDOT_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*scenario.Scenario)
	}{
		{"duplicate site", func(s *scenario.Scenario) { s.Sites = append(s.Sites, scenario.SiteSpec{ID: 1}) }},
		{"unknown endpoint", func(s *scenario.Scenario) { s.Roads[0].To = 9 }},
		{"self loop", func(s *scenario.Scenario) { s.Roads[0].To = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := triangle()
			tt.mutate(s)
			_, err := DOT(s, nil)
			assert.Error(t, err)
		})
	}
}
