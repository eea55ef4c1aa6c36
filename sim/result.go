package sim

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/dispatch-sim/dispatch-sim/sim/trace"
)

// TrialResult is one unit's statistics at the end of a trial.
// AverageTime is NaN when the unit completed no incident.
type TrialResult struct {
	Site           SiteID
	TotalTime      float64
	ProcessedCount int
	AverageTime    float64
}

// HasData reports whether AverageTime is defined.
func (r TrialResult) HasData() bool {
	return r.ProcessedCount > 0 && !math.IsNaN(r.AverageTime)
}

// SortResults orders results best base first: ascending AverageTime,
// undefined averages last. Equal averages keep their input order.
func SortResults(results []TrialResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !a.HasData() || !b.HasData() {
			return a.HasData() && !b.HasData()
		}
		return a.AverageTime < b.AverageTime
	})
}

// TrialReport is the full ranking of one trial.
type TrialReport struct {
	Trial     int
	Results   []TrialResult // best first
	Incidents uint64        // notifications broadcast during the trial

	Trace *trace.SimulationTrace // nil unless decisions tracing is on
}

// Best returns the top-ranked result. ok is false when no unit has data.
func (r TrialReport) Best() (TrialResult, bool) {
	if len(r.Results) == 0 || !r.Results[0].HasData() {
		return TrialResult{}, false
	}
	return r.Results[0], true
}

// SiteSummary pairs a base's average time with the rate of its site,
// the two numbers the graph view shows per node.
type SiteSummary struct {
	Site        SiteID
	Rate        float64
	AverageTime float64
}

// Summaries joins a trial ranking with site rates. Output order follows
// the ranking.
func Summaries(report TrialReport, sites []Site) []SiteSummary {
	rates := lo.SliceToMap(sites, func(s Site) (SiteID, float64) { return s.ID, s.Rate })
	return lo.Map(report.Results, func(r TrialResult, _ int) SiteSummary {
		return SiteSummary{Site: r.Site, Rate: rates[r.Site], AverageTime: r.AverageTime}
	})
}
