package engine

import "github.com/pipewright/pipewright/pkg/graph"

// Flow computes the total downstream demand that must pass through the
// given edge: the appliance demand at its destination (if any) plus the
// recursively summed flow of every edge leaving that destination.
//
// A dangling destination (for example mid-way through a cascading delete)
// contributes zero rather than failing; dangling edges are transient and
// self-heal once the cascade completes.
//
// The store rejects cycle-closing edges, so the recursion terminates.
func Flow(g *graph.Graph, e *graph.Edge) int64 {
	target, ok := g.Nodes[e.To]
	if !ok {
		return 0
	}

	var total int64
	if target.Type == graph.NodeAppliance {
		total = target.Demand
	}
	for _, out := range g.Outgoing(target.ID) {
		total += Flow(g, out)
	}
	return total
}
