package engine

import (
	"testing"

	"github.com/pipewright/pipewright/pkg/graph"
)

// buildGraph assembles a plain graph from shorthand node and edge specs.
func buildGraph(nodes map[string]*graph.Node, edges map[string]*graph.Edge) *graph.Graph {
	g := graph.NewGraph()
	for id, n := range nodes {
		n.ID = id
		g.Nodes[id] = n
	}
	for id, e := range edges {
		e.ID = id
		if e.Size == "" {
			e.Size = graph.SizeThreeQuarter
		}
		if e.Length == 0 {
			e.Length = 10
		}
		g.Edges[id] = e
	}
	return g
}

func TestFlow_Chain(t *testing.T) {
	// Meter -> Junction -> Appliance(40000)
	g := buildGraph(
		map[string]*graph.Node{
			"m": {Type: graph.NodeMeter},
			"j": {Type: graph.NodeJunction},
			"a": {Type: graph.NodeAppliance, Demand: 40000},
		},
		map[string]*graph.Edge{
			"mj": {From: "m", To: "j"},
			"ja": {From: "j", To: "a"},
		},
	)

	if got := Flow(g, g.Edges["mj"]); got != 40000 {
		t.Errorf("Flow(m->j) = %d, want 40000", got)
	}
	if got := Flow(g, g.Edges["ja"]); got != 40000 {
		t.Errorf("Flow(j->a) = %d, want 40000", got)
	}
}

func TestFlow_Branch(t *testing.T) {
	// Meter -> Junction feeding two appliances of 40000 and 65000.
	g := buildGraph(
		map[string]*graph.Node{
			"m":  {Type: graph.NodeMeter},
			"j":  {Type: graph.NodeJunction},
			"a1": {Type: graph.NodeAppliance, Demand: 40000},
			"a2": {Type: graph.NodeAppliance, Demand: 65000},
		},
		map[string]*graph.Edge{
			"mj":  {From: "m", To: "j"},
			"ja1": {From: "j", To: "a1"},
			"ja2": {From: "j", To: "a2"},
		},
	)

	if got := Flow(g, g.Edges["mj"]); got != 105000 {
		t.Errorf("Flow(m->j) = %d, want 105000", got)
	}
	if got := Flow(g, g.Edges["ja1"]); got != 40000 {
		t.Errorf("Flow(j->a1) = %d, want 40000", got)
	}
	if got := Flow(g, g.Edges["ja2"]); got != 65000 {
		t.Errorf("Flow(j->a2) = %d, want 65000", got)
	}
}

func TestFlow_NonApplianceDemandIgnored(t *testing.T) {
	// Demand stored on a junction must not count.
	g := buildGraph(
		map[string]*graph.Node{
			"m": {Type: graph.NodeMeter},
			"j": {Type: graph.NodeJunction, Demand: 99999},
			"a": {Type: graph.NodeAppliance, Demand: 40000},
		},
		map[string]*graph.Edge{
			"mj": {From: "m", To: "j"},
			"ja": {From: "j", To: "a"},
		},
	)

	if got := Flow(g, g.Edges["mj"]); got != 40000 {
		t.Errorf("Flow(m->j) = %d, want 40000 (junction demand ignored)", got)
	}
}

func TestFlow_DanglingEdge(t *testing.T) {
	g := buildGraph(
		map[string]*graph.Node{
			"m": {Type: graph.NodeMeter},
		},
		map[string]*graph.Edge{
			"gone": {From: "m", To: "missing"},
		},
	)

	if got := Flow(g, g.Edges["gone"]); got != 0 {
		t.Errorf("Flow over dangling edge = %d, want 0", got)
	}
}

func TestFlow_ManifoldSubtree(t *testing.T) {
	// Meter -> Manifold -> {Appliance 20000, Junction -> Appliance 30000}
	g := buildGraph(
		map[string]*graph.Node{
			"m":  {Type: graph.NodeMeter},
			"mf": {Type: graph.NodeManifold},
			"a1": {Type: graph.NodeAppliance, Demand: 20000},
			"j":  {Type: graph.NodeJunction},
			"a2": {Type: graph.NodeAppliance, Demand: 30000},
		},
		map[string]*graph.Edge{
			"e1": {From: "m", To: "mf"},
			"e2": {From: "mf", To: "a1"},
			"e3": {From: "mf", To: "j"},
			"e4": {From: "j", To: "a2"},
		},
	)

	if got := Flow(g, g.Edges["e1"]); got != 50000 {
		t.Errorf("Flow(m->mf) = %d, want 50000", got)
	}
	if got := Flow(g, g.Edges["e3"]); got != 30000 {
		t.Errorf("Flow(mf->j) = %d, want 30000", got)
	}
}
