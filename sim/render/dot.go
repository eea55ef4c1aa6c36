// Package render draws a scenario's road network as a Graphviz document,
// annotated with the ranking of one trial.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/dispatch-sim/dispatch-sim/sim"
	"github.com/dispatch-sim/dispatch-sim/sim/scenario"
)

// BestFill is the fill colour of the best-ranked base.
const BestFill = "red"

// DOT renders s with each node labelled "<id>: i=<rate>" and each road
// labelled with its travel time. summaries is one trial's ranking, best
// first (see sim.Summaries); the first base with a defined average is
// filled with BestFill and all of them are listed in a legend node.
func DOT(s *scenario.Scenario, summaries []sim.SiteSummary) ([]byte, error) {
	best, hasBest := lo.Find(summaries, func(ss sim.SiteSummary) bool { return !math.IsNaN(ss.AverageTime) })

	g := &dotGraph{UndirectedGraph: simple.NewUndirectedGraph(), name: s.Name}
	nodes := make(map[int64]siteNode, len(s.Sites))
	var maxID int64
	for _, site := range s.Sites {
		if _, dup := nodes[site.ID]; dup {
			return nil, fmt.Errorf("render: duplicate site %d", site.ID)
		}
		n := siteNode{id: site.ID, rate: site.Rate, best: hasBest && int64(best.Site) == site.ID}
		nodes[site.ID] = n
		g.AddNode(n)
		maxID = max(maxID, site.ID)
	}
	for _, r := range s.Roads {
		from, okFrom := nodes[r.From]
		to, okTo := nodes[r.To]
		if !okFrom || !okTo || r.From == r.To {
			return nil, fmt.Errorf("render: invalid road %d-%d", r.From, r.To)
		}
		if e, ok := g.EdgeBetween(r.From, r.To).(roadEdge); ok && e.travel <= r.TravelTime {
			continue
		}
		g.SetEdge(roadEdge{from: from, to: to, travel: r.TravelTime})
	}
	if len(summaries) > 0 {
		g.AddNode(legendNode{id: maxID + 1, text: legendText(summaries)})
	}

	return dot.Marshal(g, "", "", "  ")
}

func legendText(summaries []sim.SiteSummary) string {
	var b strings.Builder
	for _, ss := range summaries {
		avg := "n/a"
		if !math.IsNaN(ss.AverageTime) {
			avg = strconv.FormatFloat(ss.AverageTime, 'f', 2, 64)
		}
		fmt.Fprintf(&b, "%d: intensity=%s, avg_time=%s\n", ss.Site, formatRate(ss.Rate), avg)
	}
	return b.String()
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 4, 64)
}

type dotGraph struct {
	*simple.UndirectedGraph
	name string
}

func (g *dotGraph) DOTID() string { return g.name }

func (g *dotGraph) DOTAttributers() (graphAttrs, nodeAttrs, edgeAttrs encoding.Attributer) {
	return attributes{{Key: "overlap", Value: "false"}},
		attributes{{Key: "shape", Value: "circle"}},
		attributes{{Key: "fontsize", Value: "10"}}
}

type attributes []encoding.Attribute

func (a attributes) Attributes() []encoding.Attribute { return a }

type siteNode struct {
	id   int64
	rate float64
	best bool
}

func (n siteNode) ID() int64     { return n.id }
func (n siteNode) DOTID() string { return strconv.FormatInt(n.id, 10) }
func (n siteNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: fmt.Sprintf("%d: i=%s", n.id, formatRate(n.rate))}}
	if n.best {
		attrs = append(attrs,
			encoding.Attribute{Key: "style", Value: "filled"},
			encoding.Attribute{Key: "fillcolor", Value: BestFill})
	}
	return attrs
}

type legendNode struct {
	id   int64
	text string
}

func (n legendNode) ID() int64     { return n.id }
func (n legendNode) DOTID() string { return "legend" }
func (n legendNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "shape", Value: "box"},
		{Key: "label", Value: n.text},
	}
}

type roadEdge struct {
	from, to siteNode
	travel   float64
}

func (e roadEdge) From() graph.Node         { return e.from }
func (e roadEdge) To() graph.Node           { return e.to }
func (e roadEdge) ReversedEdge() graph.Edge { return roadEdge{from: e.to, to: e.from, travel: e.travel} }
func (e roadEdge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: strconv.FormatFloat(e.travel, 'g', -1, 64)}}
}
