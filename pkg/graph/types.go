package graph

// NodeType represents the kind of piping component a node stands for.
type NodeType string

const (
	NodeMeter     NodeType = "METER"
	NodeJunction  NodeType = "JUNCTION"
	NodeManifold  NodeType = "MANIFOLD"
	NodeAppliance NodeType = "APPLIANCE"
)

// PipeSize is a nominal pipe diameter from the fixed sizing table.
type PipeSize string

const (
	SizeHalf          PipeSize = "1/2"
	SizeThreeQuarter  PipeSize = "3/4"
	SizeOne           PipeSize = "1"
	SizeOneAndQuarter PipeSize = "1-1/4"
	SizeOneAndHalf    PipeSize = "1-1/2"
	SizeTwo           PipeSize = "2"
)

// CanvasSize is the extent of the logical drawing space on each axis.
const CanvasSize = 1000.0

// Point is a position in logical canvas coordinates (0..CanvasSize).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents a piping component placed on the canvas.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Point    `json:"position"`
	Name     string   `json:"name"`
	// Demand is the gas consumption rate in BTU/h. Meaningful only for
	// appliance nodes; zero otherwise.
	Demand int64 `json:"demand"`
}

// Edge represents a sized pipe segment. To is the downstream end.
type Edge struct {
	ID     string   `json:"id"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	Size   PipeSize `json:"size"`
	Length float64  `json:"length"` // feet
}

// Graph is a plain snapshot of nodes and edges. It carries no invariants
// of its own; Store is the authoritative, invariant-enforcing owner.
type Graph struct {
	Nodes map[string]*Node `json:"nodes"`
	Edges map[string]*Edge `json:"edges"`
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		Edges: make(map[string]*Edge),
	}
}

// Outgoing returns the edges leaving the given node.
func (g *Graph) Outgoing(nodeID string) []*Edge {
	var out []*Edge
	for _, e := range g.Edges {
		if e.From == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for id, n := range g.Nodes {
		cp := *n
		c.Nodes[id] = &cp
	}
	for id, e := range g.Edges {
		cp := *e
		c.Edges[id] = &cp
	}
	return c
}

// TypeAttributes describes the fixed per-type rendering and semantic
// attributes of a node kind.
type TypeAttributes struct {
	Radius      float64
	DefaultName string
	HasDemand   bool
}

// typeTable is the closed lookup from node type to its attributes.
var typeTable = map[NodeType]TypeAttributes{
	NodeMeter:     {Radius: 26, DefaultName: "Meter", HasDemand: false},
	NodeJunction:  {Radius: 14, DefaultName: "Tee", HasDemand: false},
	NodeManifold:  {Radius: 20, DefaultName: "Manifold", HasDemand: false},
	NodeAppliance: {Radius: 22, DefaultName: "Appliance", HasDemand: true},
}

// AttributesFor returns the attributes for a node type. Unknown types get
// junction attributes, the most neutral of the set.
func AttributesFor(t NodeType) TypeAttributes {
	if attrs, ok := typeTable[t]; ok {
		return attrs
	}
	return typeTable[NodeJunction]
}

// ValidType reports whether t is one of the four known node types.
func ValidType(t NodeType) bool {
	_, ok := typeTable[t]
	return ok
}

// PipeSizes lists the enumerated nominal diameters in ascending order.
func PipeSizes() []PipeSize {
	return []PipeSize{SizeHalf, SizeThreeQuarter, SizeOne, SizeOneAndQuarter, SizeOneAndHalf, SizeTwo}
}

// ValidSize reports whether s is one of the enumerated pipe sizes.
func ValidSize(s PipeSize) bool {
	for _, known := range PipeSizes() {
		if s == known {
			return true
		}
	}
	return false
}
