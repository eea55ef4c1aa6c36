package trace

import "sort"

// BaseSummary aggregates the trace of one unit.
type BaseSummary struct {
	Base         int64
	Legs         map[LegKind]int
	Completions  int
	MeanDistance float64 // over dispatch and chain legs
	MaxDistance  float64
	MaxHops      int // most roads driven on a single leg, 0 without routes
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDispatches  int
	TotalCompletions int
	Bases            []BaseSummary // ascending Base
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil {
		return summary
	}
	summary.TotalDispatches = len(st.Dispatches)
	summary.TotalCompletions = len(st.Completions)

	byBase := make(map[int64]*BaseSummary)
	get := func(base int64) *BaseSummary {
		b, ok := byBase[base]
		if !ok {
			b = &BaseSummary{Base: base, Legs: make(map[LegKind]int)}
			byBase[base] = b
		}
		return b
	}

	outbound := make(map[int64]int)
	for _, d := range st.Dispatches {
		b := get(d.Base)
		b.Legs[d.Leg]++
		if hops := len(d.Route) - 1; hops > b.MaxHops {
			b.MaxHops = hops
		}
		if d.Leg == LegReturn {
			continue
		}
		outbound[d.Base]++
		b.MeanDistance += d.Distance
		if d.Distance > b.MaxDistance {
			b.MaxDistance = d.Distance
		}
	}
	for _, c := range st.Completions {
		get(c.Base).Completions++
	}

	for base, b := range byBase {
		if n := outbound[base]; n > 0 {
			b.MeanDistance /= float64(n)
		}
		summary.Bases = append(summary.Bases, *b)
	}
	sort.Slice(summary.Bases, func(i, j int) bool { return summary.Bases[i].Base < summary.Bases[j].Base })
	return summary
}
