// sim/driver.go
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dispatch-sim/dispatch-sim/sim/trace"
)

// Driver runs the base-placement experiment: one unit per candidate base,
// all of them fed the same incident stream, ranked after the horizon.
type Driver struct {
	cfg    Config
	sites  []Site // ascending SiteID; fixes RNG draw and update order
	oracle DistanceOracle
}

// NewDriver validates cfg and builds the distance oracle. Every returned
// error is a *ConfigurationError.
func NewDriver(cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	oracle, err := NewGraphOracle(cfg.Sites, cfg.Roads)
	if err != nil {
		return nil, err
	}
	return NewDriverWithOracle(cfg, oracle)
}

// NewDriverWithOracle is NewDriver with a caller-supplied oracle. The
// graph in cfg.Roads is ignored.
func NewDriverWithOracle(cfg Config, oracle DistanceOracle) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Sites) == 0 {
		return nil, configErrorf("sites", "at least one site is required")
	}
	sites := make([]Site, len(cfg.Sites))
	copy(sites, cfg.Sites)
	sort.Slice(sites, func(i, j int) bool { return sites[i].ID < sites[j].ID })
	for i := 1; i < len(sites); i++ {
		if sites[i].ID == sites[i-1].ID {
			return nil, configErrorf("sites", "duplicate site %d", sites[i].ID)
		}
	}
	warnOnCoarseTicks(sites, cfg.DT)
	return &Driver{cfg: cfg, sites: sites, oracle: oracle}, nil
}

// warnOnCoarseTicks flags scenarios where several arrivals per tick are
// likely; those collapse into a single notification per site.
func warnOnCoarseTicks(sites []Site, dt float64) {
	busiest := lo.MaxBy(sites, func(a, b Site) bool { return a.Rate > b.Rate })
	if busiest.Rate == 0 {
		logrus.Warnf("all site rates are zero; no incident will ever be generated")
		return
	}
	if busiest.Rate*dt > 1 {
		logrus.Warnf("dt=%v exceeds the mean inter-arrival time of site %d (rate %v); same-tick arrivals will be merged",
			dt, busiest.ID, busiest.Rate)
	}
}

// Sites returns the scenario sites in simulation order.
func (d *Driver) Sites() []Site {
	return d.sites
}

// Run executes RunNumber independent trials and returns their rankings in
// trial order. Trials share nothing but the oracle, so with Workers > 1
// they run concurrently and still produce identical results.
func (d *Driver) Run(ctx context.Context) ([]TrialReport, error) {
	n := d.cfg.RunNumber
	workers := max(d.cfg.Workers, 1)
	logrus.Infof("Starting %d trial(s) over %d sites, run_time=%v, dt=%v, seed=%d, workers=%d",
		n, len(d.sites), d.cfg.RunTime, d.cfg.DT, d.cfg.Seed, workers)

	// PartitionedRNG is not thread-safe: derive every stream up front.
	prng := NewPartitionedRNG(NewSimulationKey(d.cfg.Seed))
	rngs := make([]*rand.Rand, n)
	for i := range rngs {
		rngs[i] = prng.ForTrial(i)
	}

	reports := make([]TrialReport, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := d.RunTrial(i, rngs[i])
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logrus.Infof("Completed %d trial(s)", n)
	return reports, nil
}

// RunTrial simulates one trial drawing all randomness from rng.
func (d *Driver) RunTrial(index int, rng *rand.Rand) (TrialReport, error) {
	var st *trace.SimulationTrace
	if d.cfg.TraceLevel == trace.TraceLevelDecisions {
		st = trace.NewSimulationTrace(trace.TraceConfig{Level: d.cfg.TraceLevel})
	}

	generators := lo.Map(d.sites, func(s Site, _ int) *AccidentGenerator {
		return NewAccidentGenerator(s, rng)
	})
	units := lo.Map(d.sites, func(s Site, _ int) *MobileUnit {
		return NewMobileUnit(s.ID, d.cfg.SiteDelay, d.oracle).WithTrace(st)
	})

	dt := d.cfg.DT
	remaining := d.cfg.RunTime
	batch := make([]Incident, 0, len(generators))
	var seq uint64
	for remaining > 0 {
		remaining -= dt

		batch = batch[:0]
		for _, g := range generators {
			if g.Emit(dt) {
				seq++
				batch = append(batch, Incident{Site: g.Site().ID, Seq: seq})
			}
		}
		for _, inc := range batch {
			for _, u := range units {
				u.AddIncident(inc)
			}
		}
		for _, u := range units {
			if err := u.Update(dt); err != nil {
				return TrialReport{}, fmt.Errorf("trial %d: %w", index, err)
			}
		}
	}

	for _, u := range units {
		if u.State() != WaitOnStartSite || u.Pending() > 0 {
			logrus.Debugf("trial %d: unit %d ends %v near site %d with %d incident(s) unserved",
				index, u.Base(), u.State(), u.Position(), u.Pending())
		}
	}
	results := lo.Map(units, func(u *MobileUnit, _ int) TrialResult { return u.Snapshot() })
	SortResults(results)
	report := TrialReport{Trial: index, Results: results, Incidents: seq, Trace: st}
	if best, ok := report.Best(); ok {
		logrus.Debugf("trial %d: %d incidents, best base %d (avg %.3f over %d)",
			index, seq, best.Site, best.AverageTime, best.ProcessedCount)
	} else {
		logrus.Debugf("trial %d: %d incidents, no unit completed an incident", index, seq)
	}
	return report, nil
}
