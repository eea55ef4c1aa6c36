package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// DistanceOracle answers travel-time queries over the static site graph.
// Implementations must be safe for concurrent readers.
type DistanceOracle interface {
	// ShortestPathLength returns the travel time of the fastest route a→b.
	ShortestPathLength(a, b SiteID) (float64, error)
	// NearestOf returns the candidate closest to source. Ties go to the
	// candidate that appears first in the slice.
	NearestOf(source SiteID, candidates []SiteID) (SiteID, float64, error)
}

// Router is implemented by oracles that can also report the route itself.
// Units record routes in the dispatch trace when their oracle is a Router.
type Router interface {
	Path(a, b SiteID) ([]SiteID, float64, error)
}

// GraphOracle precomputes all-pairs shortest paths once; the graph never
// changes during a run so every query is a table lookup.
type GraphOracle struct {
	paths path.AllShortest
	known map[SiteID]bool
}

// NewGraphOracle builds the site graph and verifies that every site can
// reach every other site. Any problem is a *ConfigurationError.
func NewGraphOracle(sites []Site, roads []Road) (*GraphOracle, error) {
	if len(sites) == 0 {
		return nil, configErrorf("sites", "at least one site is required")
	}
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	known := make(map[SiteID]bool, len(sites))
	for _, s := range sites {
		if known[s.ID] {
			return nil, configErrorf("sites", "duplicate site %d", s.ID)
		}
		known[s.ID] = true
		g.AddNode(simple.Node(s.ID))
	}
	for i, r := range roads {
		field := fmt.Sprintf("roads[%d]", i)
		if !known[r.From] || !known[r.To] {
			return nil, configErrorf(field, "road %d-%d references an unknown site", r.From, r.To)
		}
		if r.From == r.To {
			return nil, configErrorf(field, "self-loop on site %d", r.From)
		}
		if math.IsNaN(r.TravelTime) || math.IsInf(r.TravelTime, 0) || r.TravelTime < 0 {
			return nil, configErrorf(field, "travel_time must be a finite non-negative number, got %v", r.TravelTime)
		}
		// parallel roads: the fastest one wins
		if w, ok := g.Weight(int64(r.From), int64(r.To)); ok && w <= r.TravelTime {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(r.From), simple.Node(r.To), r.TravelTime))
	}

	o := &GraphOracle{
		paths: path.DijkstraAllPaths(g),
		known: known,
	}
	for i := range sites {
		for j := i + 1; j < len(sites); j++ {
			a, b := sites[i].ID, sites[j].ID
			if math.IsInf(o.paths.Weight(int64(a), int64(b)), 1) {
				return nil, configErrorf("roads", "site %d is unreachable from site %d", b, a)
			}
		}
	}
	return o, nil
}

// ShortestPathLength implements DistanceOracle.
func (o *GraphOracle) ShortestPathLength(a, b SiteID) (float64, error) {
	if !o.known[a] || !o.known[b] {
		return 0, fmt.Errorf("shortest path %d->%d: unknown site", a, b)
	}
	if a == b {
		return 0, nil
	}
	w := o.paths.Weight(int64(a), int64(b))
	if math.IsInf(w, 1) {
		return 0, fmt.Errorf("shortest path %d->%d: no route", a, b)
	}
	return w, nil
}

// NearestOf implements DistanceOracle.
func (o *GraphOracle) NearestOf(source SiteID, candidates []SiteID) (SiteID, float64, error) {
	if len(candidates) == 0 {
		return 0, 0, fmt.Errorf("nearest of %d: empty candidate set", source)
	}
	best, bestDist := candidates[0], math.Inf(1)
	for _, c := range candidates {
		d, err := o.ShortestPathLength(source, c)
		if err != nil {
			return 0, 0, err
		}
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist, nil
}

// Path returns the site sequence of a fastest route a→b, endpoints included.
func (o *GraphOracle) Path(a, b SiteID) ([]SiteID, float64, error) {
	if !o.known[a] || !o.known[b] {
		return nil, 0, fmt.Errorf("path %d->%d: unknown site", a, b)
	}
	if a == b {
		return []SiteID{a}, 0, nil
	}
	nodes, w, _ := o.paths.Between(int64(a), int64(b))
	if len(nodes) == 0 {
		return nil, 0, fmt.Errorf("path %d->%d: no route", a, b)
	}
	route := make([]SiteID, len(nodes))
	for i, n := range nodes {
		route[i] = SiteID(n.ID())
	}
	return route, w, nil
}
