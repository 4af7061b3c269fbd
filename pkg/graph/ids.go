package graph

import "github.com/google/uuid"

// NewNodeID returns a fresh collision-resistant node identifier.
func NewNodeID() string {
	return "node_" + uuid.NewString()
}

// NewEdgeID returns a fresh collision-resistant edge identifier.
func NewEdgeID() string {
	return "edge_" + uuid.NewString()
}
