package sim

import "fmt"

// SiteID identifies a node of the service graph.
type SiteID int64

// Site is an accident source and a candidate base at the same time.
type Site struct {
	ID   SiteID
	Rate float64 // accidents per unit time (Poisson λ)
}

// Road is an undirected edge between two sites.
type Road struct {
	From       SiteID
	To         SiteID
	TravelTime float64
}

// Incident is one accident awaiting service. Seq is unique within a trial
// and lets a unit tell two incidents at the same site apart.
type Incident struct {
	Site SiteID
	Seq  uint64
}

func (i Incident) String() string {
	return fmt.Sprintf("incident#%d@%d", i.Seq, i.Site)
}
