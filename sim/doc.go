// Package sim provides the core dispatch simulation engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - accident.go: per-site Poisson accident generator sampled in fixed ticks
//   - unit.go: MobileUnit state machine (wait at base → drive → serve → return)
//   - driver.go: the tick loop, incident broadcast and per-trial ranking
//
// # Architecture
//
// One trial creates an AccidentGenerator and a MobileUnit for every site.
// Each tick the generators are sampled in site order, every accident is
// broadcast to every unit, then every unit is updated in site order. Units
// never interact; they only share the read-only DistanceOracle. After the
// horizon the units are ranked by average time per incident.
//
// Sub-packages:
//   - sim/scenario/: YAML and legacy text scenario loading
//   - sim/trace/: dispatch decision recording
//   - sim/render/: Graphviz rendering of a ranked scenario
//   - sim/store/: SQL persistence of finished rankings
//
// # Determinism
//
// All randomness flows through PartitionedRNG. Trial i draws from its own
// stream, so a run is a pure function of (scenario, seed) whether trials
// execute sequentially or concurrently.
package sim
