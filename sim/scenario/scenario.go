// Package scenario loads dispatch scenarios from YAML or from the legacy
// plain-text layout and turns them into a sim.Config.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/dispatch-sim/dispatch-sim/sim"
)

// Scenario is the on-disk description of one experiment.
type Scenario struct {
	Name      string     `yaml:"name,omitempty"`
	Seed      int64      `yaml:"seed"`
	SiteDelay float64    `yaml:"site_delay"`
	DT        float64    `yaml:"dt"`
	RunTime   float64    `yaml:"run_time"`
	RunNumber int        `yaml:"run_number"`
	Sites     []SiteSpec `yaml:"sites"`
	Roads     []RoadSpec `yaml:"roads"`
}

// SiteSpec is a candidate base and its accident rate (accidents per unit time).
type SiteSpec struct {
	ID   int64   `yaml:"id"`
	Rate float64 `yaml:"rate"`
}

// RoadSpec is an undirected road between two sites.
type RoadSpec struct {
	From       int64   `yaml:"from"`
	To         int64   `yaml:"to"`
	TravelTime float64 `yaml:"travel_time"`
}

// LoadScenario reads a YAML scenario. Unknown keys are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode parses a YAML scenario from r.
func Decode(r io.Reader) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &s, nil
}

// Encode writes s as YAML.
func (s *Scenario) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}
	return enc.Close()
}

// Validate reports the first problem with s, including graph problems.
// Every error is a *sim.ConfigurationError.
func (s *Scenario) Validate() error {
	cfg := s.ToConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	_, err := sim.NewGraphOracle(cfg.Sites, cfg.Roads)
	return err
}

// ToConfig converts s into a driver configuration. Runtime-only knobs
// (workers, tracing) are left at their zero values.
func (s *Scenario) ToConfig() sim.Config {
	return sim.Config{
		Sites: lo.Map(s.Sites, func(site SiteSpec, _ int) sim.Site {
			return sim.Site{ID: sim.SiteID(site.ID), Rate: site.Rate}
		}),
		Roads: lo.Map(s.Roads, func(r RoadSpec, _ int) sim.Road {
			return sim.Road{From: sim.SiteID(r.From), To: sim.SiteID(r.To), TravelTime: r.TravelTime}
		}),
		TimingConfig: sim.NewTimingConfig(s.SiteDelay, s.DT, s.RunTime),
		RunNumber:    s.RunNumber,
		Seed:         s.Seed,
	}
}
