package sim

import (
	"fmt"
	"math"

	"github.com/dispatch-sim/dispatch-sim/sim/trace"
)

// TimingConfig groups the clock parameters of a run.
type TimingConfig struct {
	SiteDelay float64 // on-site service duration
	DT        float64 // tick size
	RunTime   float64 // horizon of each trial
}

// NewTimingConfig creates a TimingConfig. No defaults are injected.
func NewTimingConfig(siteDelay, dt, runTime float64) TimingConfig {
	return TimingConfig{SiteDelay: siteDelay, DT: dt, RunTime: runTime}
}

// Config is everything the Driver needs.
type Config struct {
	Sites []Site
	Roads []Road
	TimingConfig

	RunNumber int   // number of independent trials
	Seed      int64 // master seed; trial i uses stream SubsystemTrial(i)
	Workers   int   // trials run concurrently; <= 1 means sequential

	TraceLevel trace.TraceLevel
}

// Validate checks scalar parameters and site rates. Graph problems are
// reported by NewGraphOracle.
func (c Config) Validate() error {
	if err := finiteNonNegative("site_delay", c.SiteDelay); err != nil {
		return err
	}
	if math.IsNaN(c.DT) || math.IsInf(c.DT, 0) || c.DT <= 0 {
		return configErrorf("dt", "must be a finite positive number, got %v", c.DT)
	}
	if err := finiteNonNegative("run_time", c.RunTime); err != nil {
		return err
	}
	if c.RunNumber < 1 {
		return configErrorf("run_number", "must be at least 1, got %d", c.RunNumber)
	}
	for i, s := range c.Sites {
		if err := finiteNonNegative(fmt.Sprintf("sites[%d].rate", i), s.Rate); err != nil {
			return err
		}
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return configErrorf("trace", "unknown trace level %q", c.TraceLevel)
	}
	return nil
}

func finiteNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return configErrorf(field, "must be a finite non-negative number, got %v", v)
	}
	return nil
}
