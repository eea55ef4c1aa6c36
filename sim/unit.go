// Defines MobileUnit, the finite-state machine of one emergency vehicle.
// A unit is pinned to a base site, hears about every incident in the
// scenario, and serves them nearest-first before driving back to base.

package sim

import (
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/dispatch-sim/dispatch-sim/sim/trace"
)

// UnitState is the lifecycle state of a MobileUnit.
type UnitState int

const (
	WaitOnStartSite UnitState = iota // idle at base (initial)
	MoveToSite                       // driving to an incident
	WaitOnAccidentSite               // handling an incident on site
	MoveToStart                      // driving back to base
)

func (s UnitState) String() string {
	switch s {
	case WaitOnStartSite:
		return "wait_on_start_site"
	case MoveToSite:
		return "move_to_site"
	case WaitOnAccidentSite:
		return "wait_on_accident_site"
	case MoveToStart:
		return "move_to_start"
	default:
		return fmt.Sprintf("unit_state(%d)", int(s))
	}
}

// MobileUnit models one vehicle based at a candidate site.
type MobileUnit struct {
	base         SiteID
	serviceDelay float64
	oracle       DistanceOracle
	trace        *trace.SimulationTrace // nil disables recording

	state    UnitState
	position SiteID // last reached site, or the destination once a leg starts
	target   Incident
	worklist []Incident

	remainingTravel float64
	remainingWait   float64
	travelTime      float64 // length of the leg that led to target

	clock     float64
	totalTime float64
	processed int
}

// NewMobileUnit creates an idle unit at base.
func NewMobileUnit(base SiteID, serviceDelay float64, oracle DistanceOracle) *MobileUnit {
	return &MobileUnit{
		base:         base,
		serviceDelay: serviceDelay,
		oracle:       oracle,
		state:        WaitOnStartSite,
		position:     base,
		worklist:     make([]Incident, 0),
	}
}

// WithTrace attaches a decision trace to the unit.
func (u *MobileUnit) WithTrace(st *trace.SimulationTrace) *MobileUnit {
	u.trace = st
	return u
}

// AddIncident appends inc to the worklist. It never changes state; the
// unit notices the incident on its next Update.
func (u *MobileUnit) AddIncident(inc Incident) {
	u.worklist = append(u.worklist, inc)
}

// Update advances the unit by dt. An oracle failure is returned as is and
// leaves the unit unusable for the rest of the trial.
func (u *MobileUnit) Update(dt float64) error {
	u.clock += dt
	switch u.state {
	case MoveToStart:
		u.remainingTravel -= dt
		if u.remainingTravel <= 0 {
			u.remainingTravel = 0
			u.state = WaitOnStartSite
		}

	case MoveToSite:
		u.remainingTravel -= dt
		if u.remainingTravel <= 0 {
			// arrival overshoot is time already spent on site
			u.remainingWait = u.serviceDelay + u.remainingTravel
			u.remainingTravel = 0
			u.state = WaitOnAccidentSite
		}

	case WaitOnAccidentSite:
		u.remainingWait -= dt
		if u.remainingWait <= 0 {
			return u.completeIncident()
		}

	case WaitOnStartSite:
		if len(u.worklist) > 0 {
			return u.dispatch(0, trace.LegDispatch)
		}

	default:
		panic(fmt.Sprintf("mobile unit %d: unknown state %d", u.base, u.state))
	}
	return nil
}

func (u *MobileUnit) completeIncident() error {
	overshoot := u.remainingWait
	u.remainingWait = 0

	_, idx, ok := lo.FindIndexOf(u.worklist, func(inc Incident) bool { return inc.Seq == u.target.Seq })
	if !ok {
		return fmt.Errorf("unit %d: %v missing from worklist", u.base, u.target)
	}
	u.worklist = slices.Delete(u.worklist, idx, idx+1)
	u.processed++
	u.totalTime += u.travelTime + u.serviceDelay
	if u.trace != nil {
		u.trace.RecordCompletion(trace.CompletionRecord{
			Clock:       u.clock,
			Base:        int64(u.base),
			Site:        int64(u.target.Site),
			IncidentSeq: u.target.Seq,
			ServiceTime: u.travelTime + u.serviceDelay,
		})
	}

	if len(u.worklist) > 0 {
		return u.dispatch(overshoot, trace.LegChain)
	}

	d, err := u.oracle.ShortestPathLength(u.position, u.base)
	if err != nil {
		return fmt.Errorf("unit %d: return to base: %w", u.base, err)
	}
	u.recordLeg(u.position, u.base, 0, d, trace.LegReturn)
	u.travelTime = d
	u.position = u.base
	u.remainingTravel = overshoot + d
	u.state = MoveToStart
	return nil
}

// dispatch picks the nearest pending incident from the current position.
// carry is the (non-positive) overshoot of the timer that just expired.
func (u *MobileUnit) dispatch(carry float64, leg trace.LegKind) error {
	sites := lo.Map(u.worklist, func(inc Incident, _ int) SiteID { return inc.Site })
	site, d, err := u.oracle.NearestOf(u.position, sites)
	if err != nil {
		return fmt.Errorf("unit %d: dispatch: %w", u.base, err)
	}
	u.target = u.worklist[lo.IndexOf(sites, site)]
	u.recordLeg(u.position, site, u.target.Seq, d, leg)
	u.position = site
	u.travelTime = d
	u.remainingTravel = carry + d
	u.state = MoveToSite
	return nil
}

func (u *MobileUnit) recordLeg(from, to SiteID, seq uint64, distance float64, leg trace.LegKind) {
	if u.trace == nil {
		return
	}
	var route []int64
	if r, ok := u.oracle.(Router); ok {
		sites, _, err := r.Path(from, to)
		if err != nil {
			logrus.Warnf("unit %d: no route %d->%d for trace: %v", u.base, from, to, err)
		}
		route = lo.Map(sites, func(s SiteID, _ int) int64 { return int64(s) })
	}
	u.trace.RecordDispatch(trace.DispatchRecord{
		Clock:       u.clock,
		Base:        int64(u.base),
		From:        int64(from),
		To:          int64(to),
		IncidentSeq: seq,
		Distance:    distance,
		Leg:         leg,
		Route:       route,
	})
}

// Base returns the site the unit is based at.
func (u *MobileUnit) Base() SiteID { return u.base }

// State returns the current FSM state.
func (u *MobileUnit) State() UnitState { return u.state }

// Position returns the unit's current (or destination) site.
func (u *MobileUnit) Position() SiteID { return u.position }

// Pending returns the number of incidents in the worklist, including the
// one being served.
func (u *MobileUnit) Pending() int { return len(u.worklist) }

// TotalTime is the sum of travel+service time over completed incidents.
func (u *MobileUnit) TotalTime() float64 { return u.totalTime }

// ProcessedCount is the number of completed incidents.
func (u *MobileUnit) ProcessedCount() int { return u.processed }

// AverageTime is TotalTime/ProcessedCount, or NaN when nothing completed.
func (u *MobileUnit) AverageTime() float64 {
	if u.processed == 0 {
		return math.NaN()
	}
	return u.totalTime / float64(u.processed)
}

// Snapshot freezes the unit's statistics.
func (u *MobileUnit) Snapshot() TrialResult {
	return TrialResult{
		Site:           u.base,
		TotalTime:      u.totalTime,
		ProcessedCount: u.processed,
		AverageTime:    u.AverageTime(),
	}
}
