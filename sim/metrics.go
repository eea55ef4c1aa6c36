// Aggregates trial rankings for final reporting. The driver never averages
// across trials; these helpers are for the caller.

package sim

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Distribution captures statistical summary of a metric.
type Distribution struct {
	Mean   float64
	StdDev float64
	P50    float64
	P95    float64
	Min    float64
	Max    float64
	Count  int
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Mean:  stat.Mean(sorted, nil),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
	if len(sorted) > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}

// percentile computes the p-th percentile using linear interpolation.
// Input must be sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// SiteAggregate summarizes one candidate base over all trials.
type SiteAggregate struct {
	Site        SiteID
	Rate        float64
	AverageTime Distribution // over trials where the unit had data
	Wins        int          // trials where this base ranked first
	NoData      int          // trials where the unit completed nothing
}

// Aggregate folds trial rankings into per-site statistics, best mean first.
// Sites that never had data come last, in site order.
func Aggregate(reports []TrialReport, sites []Site) []SiteAggregate {
	samples := make(map[SiteID][]float64, len(sites))
	wins := make(map[SiteID]int, len(sites))
	noData := make(map[SiteID]int, len(sites))
	for _, rep := range reports {
		if best, ok := rep.Best(); ok {
			wins[best.Site]++
		}
		for _, r := range rep.Results {
			if r.HasData() {
				samples[r.Site] = append(samples[r.Site], r.AverageTime)
			} else {
				noData[r.Site]++
			}
		}
	}

	aggs := lo.Map(sites, func(s Site, _ int) SiteAggregate {
		return SiteAggregate{
			Site:        s.ID,
			Rate:        s.Rate,
			AverageTime: NewDistribution(samples[s.ID]),
			Wins:        wins[s.ID],
			NoData:      noData[s.ID],
		}
	})
	sort.SliceStable(aggs, func(i, j int) bool {
		a, b := aggs[i], aggs[j]
		if a.AverageTime.Count == 0 || b.AverageTime.Count == 0 {
			return a.AverageTime.Count > 0 && b.AverageTime.Count == 0
		}
		if a.AverageTime.Mean != b.AverageTime.Mean {
			return a.AverageTime.Mean < b.AverageTime.Mean
		}
		return a.Site < b.Site
	})
	return aggs
}

// PrintTrial writes one line per unit, best first:
// (site) (total time) (processed incidents) (average time).
func PrintTrial(w io.Writer, report TrialReport) {
	fmt.Fprintf(w, "=== Trial %d (%d incidents) ===\n", report.Trial, report.Incidents)
	for _, r := range report.Results {
		fmt.Fprintf(w, "%d %.4f %d %s\n", r.Site, r.TotalTime, r.ProcessedCount, formatAverage(r.AverageTime))
	}
}

// PrintAggregate writes the cross-trial table produced by Aggregate.
func PrintAggregate(w io.Writer, aggs []SiteAggregate, trials int) {
	fmt.Fprintf(w, "=== Summary over %d trial(s) ===\n", trials)
	fmt.Fprintf(w, "%-8s %-10s %-10s %-10s %-10s %-10s %-6s %-6s\n",
		"site", "intensity", "avg_mean", "avg_std", "avg_min", "avg_max", "wins", "nodata")
	for _, a := range aggs {
		d := a.AverageTime
		if d.Count == 0 {
			fmt.Fprintf(w, "%-8d %-10.4f %-10s %-10s %-10s %-10s %-6d %-6d\n",
				a.Site, a.Rate, "n/a", "n/a", "n/a", "n/a", a.Wins, a.NoData)
			continue
		}
		fmt.Fprintf(w, "%-8d %-10.4f %-10.2f %-10.2f %-10.2f %-10.2f %-6d %-6d\n",
			a.Site, a.Rate, d.Mean, d.StdDev, d.Min, d.Max, a.Wins, a.NoData)
	}
}

func formatAverage(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}
