package engine

import "github.com/pipewright/pipewright/pkg/graph"

// Verdict is the per-edge result of checking aggregated flow against
// capacity. Flow exceeding capacity is a validation state, not an error;
// the user is free to keep editing.
type Verdict struct {
	IsValid  bool  `json:"is_valid"`
	Flow     int64 `json:"flow"`
	Capacity int64 `json:"capacity"`
}

// Validate recomputes the verdict for every edge in the graph. The result
// covers exactly the current edge set: removed edges leave no stale
// entries. Validation is deterministic, has no side effects, and is run in
// full after every mutation; incremental recomputation is deliberately not
// attempted at this graph scale.
func Validate(g *graph.Graph, designPressureDrop float64) map[string]Verdict {
	verdicts := make(map[string]Verdict, len(g.Edges))
	for id, e := range g.Edges {
		flow := Flow(g, e)
		capacity := Capacity(e.Size, e.Length, designPressureDrop)
		verdicts[id] = Verdict{
			IsValid:  flow <= capacity,
			Flow:     flow,
			Capacity: capacity,
		}
	}
	return verdicts
}
