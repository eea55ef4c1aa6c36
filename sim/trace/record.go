// Package trace provides dispatch-trace recording for unit behavior analysis.
// This package has no dependencies on sim/ — it stores pure data types.
package trace

// LegKind tells why a unit started driving.
type LegKind string

const (
	LegDispatch LegKind = "dispatch" // base → incident
	LegChain    LegKind = "chain"    // incident → next incident
	LegReturn   LegKind = "return"   // incident → base
)

// DispatchRecord captures a single routing decision of a unit.
type DispatchRecord struct {
	Clock       float64 // trial time at the end of the deciding tick
	Base        int64
	From        int64
	To          int64
	IncidentSeq uint64 // 0 for LegReturn
	Distance    float64
	Leg         LegKind
	Route       []int64 // From..To inclusive; nil when the oracle cannot route
}

// CompletionRecord captures the end of an on-site wait.
type CompletionRecord struct {
	Clock       float64
	Base        int64
	Site        int64
	IncidentSeq uint64
	ServiceTime float64 // travel + service delay credited to the unit
}
