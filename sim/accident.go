package sim

import (
	"math"
	"math/rand"
)

// AccidentGenerator samples a homogeneous Poisson process for one site in
// fixed steps. The scheduled next arrival is carried across calls, so any
// partition of time into steps sees the same arrivals as sampling the
// union interval at once.
type AccidentGenerator struct {
	site Site
	rng  *rand.Rand

	timeUntilNextEvent float64 // time from the current step start to the pending arrival
	carriedEvents      int     // 1 when an arrival is pending at timeUntilNextEvent
}

// NewAccidentGenerator creates a generator for site drawing from rng.
func NewAccidentGenerator(site Site, rng *rand.Rand) *AccidentGenerator {
	return &AccidentGenerator{site: site, rng: rng}
}

// Site returns the site this generator emits accidents for.
func (g *AccidentGenerator) Site() Site {
	return g.site
}

// Sample advances the process by dt and returns the number of arrivals
// that fell inside the step.
func (g *AccidentGenerator) Sample(dt float64) int {
	if g.site.Rate == 0 {
		return 0
	}
	if g.timeUntilNextEvent > dt {
		g.timeUntilNextEvent -= dt
		return 0
	}
	remaining := dt - g.timeUntilNextEvent
	events := g.carriedEvents
	for remaining > 0 {
		remaining -= g.interArrival()
		if remaining > 0 {
			events++
		}
	}
	g.timeUntilNextEvent = -remaining
	if g.timeUntilNextEvent > 0 {
		g.carriedEvents = 1
	} else {
		g.carriedEvents = 0
	}
	return events
}

// Emit reports whether at least one accident happened during dt.
func (g *AccidentGenerator) Emit(dt float64) bool {
	return g.Sample(dt) > 0
}

// interArrival draws an exponential gap by inversion: -ln(U)/λ.
func (g *AccidentGenerator) interArrival() float64 {
	u := g.rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64 // prevent -ln(0) = +Inf
	}
	return -math.Log(u) / g.site.Rate
}
