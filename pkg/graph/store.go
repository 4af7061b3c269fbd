package graph

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	// ErrNodeNotFound is returned when a mutation references a missing node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned when a mutation references a missing edge.
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrCycle is returned when adding an edge would make a node reachable
	// from itself. The demand aggregation recurses downstream and requires
	// the edge set to stay a forest.
	ErrCycle = errors.New("edge would create a cycle")
	// ErrSelfEdge is returned when an edge's two endpoints are the same node.
	ErrSelfEdge = errors.New("edge endpoints must differ")
)

// Store is the authoritative in-memory graph. All mutations go through it
// so the structural invariants (unique ids, live endpoints, acyclicity,
// cascade deletes) hold at every observable point.
type Store struct {
	mu    sync.RWMutex
	graph *Graph
}

// NewStore creates an empty graph store.
func NewStore() *Store {
	return &Store{graph: NewGraph()}
}

// AddNode creates a node of the given type at the given position and
// returns its id. An empty name gets the type's default label.
func (s *Store) AddNode(t NodeType, pos Point, name string) (string, error) {
	if !ValidType(t) {
		return "", fmt.Errorf("unknown node type %q", t)
	}
	if name == "" {
		name = AttributesFor(t).DefaultName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := &Node{
		ID:       NewNodeID(),
		Type:     t,
		Position: clampPoint(pos),
		Name:     name,
	}
	s.graph.Nodes[n.ID] = n
	return n.ID, nil
}

// MoveNode updates a node's position, clamped to the canvas.
func (s *Store) MoveNode(id string, pos Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.graph.Nodes[id]
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrNodeNotFound)
	}
	n.Position = clampPoint(pos)
	return nil
}

// RenameNode updates a node's display label.
func (s *Store) RenameNode(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.graph.Nodes[id]
	if !ok {
		return fmt.Errorf("rename %s: %w", id, ErrNodeNotFound)
	}
	n.Name = name
	return nil
}

// SetDemand sets the consumption rate on a node. Demand is only meaningful
// for appliances, but storing it on other types is harmless: the aggregator
// ignores it.
func (s *Store) SetDemand(id string, demand int64) error {
	if demand < 0 {
		return fmt.Errorf("demand must be non-negative, got %d", demand)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.graph.Nodes[id]
	if !ok {
		return fmt.Errorf("set demand %s: %w", id, ErrNodeNotFound)
	}
	n.Demand = demand
	return nil
}

// AddEdge creates a pipe segment from one node to another and returns its
// id. The addition is rejected if either endpoint is missing, the endpoints
// coincide, or the new edge would close a cycle.
func (s *Store) AddEdge(from, to string, size PipeSize, length float64) (string, error) {
	if from == to {
		return "", ErrSelfEdge
	}
	if !ValidSize(size) {
		return "", fmt.Errorf("unknown pipe size %q", size)
	}
	if length <= 0 {
		return "", fmt.Errorf("length must be positive, got %g", length)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graph.Nodes[from]; !ok {
		return "", fmt.Errorf("edge from %s: %w", from, ErrNodeNotFound)
	}
	if _, ok := s.graph.Nodes[to]; !ok {
		return "", fmt.Errorf("edge to %s: %w", to, ErrNodeNotFound)
	}
	if s.reachable(to, from) {
		return "", ErrCycle
	}

	e := &Edge{
		ID:     NewEdgeID(),
		From:   from,
		To:     to,
		Size:   size,
		Length: length,
	}
	s.graph.Edges[e.ID] = e
	return e.ID, nil
}

// SetEdgeSize changes a segment's nominal diameter.
func (s *Store) SetEdgeSize(id string, size PipeSize) error {
	if !ValidSize(size) {
		return fmt.Errorf("unknown pipe size %q", size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.graph.Edges[id]
	if !ok {
		return fmt.Errorf("resize %s: %w", id, ErrEdgeNotFound)
	}
	e.Size = size
	return nil
}

// SetEdgeLength changes a segment's length in feet.
func (s *Store) SetEdgeLength(id string, length float64) error {
	if length <= 0 {
		return fmt.Errorf("length must be positive, got %g", length)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.graph.Edges[id]
	if !ok {
		return fmt.Errorf("relength %s: %w", id, ErrEdgeNotFound)
	}
	e.Length = length
	return nil
}

// DeleteEdge removes a single segment.
func (s *Store) DeleteEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graph.Edges[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrEdgeNotFound)
	}
	delete(s.graph.Edges, id)
	return nil
}

// DeleteNode removes a node and cascades to every edge touching it.
func (s *Store) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graph.Nodes[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNodeNotFound)
	}
	delete(s.graph.Nodes, id)
	for eid, e := range s.graph.Edges {
		if e.From == id || e.To == id {
			delete(s.graph.Edges, eid)
		}
	}
	return nil
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.graph.Nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Edge returns a copy of the edge with the given id.
func (s *Store) Edge(id string) (Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.graph.Edges[id]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// HitTest returns the id of the topmost node whose body covers the given
// point, or "" if the point lands on empty canvas. Hit radii come from the
// per-type attribute table.
func (s *Store) HitTest(p Point) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := ""
	bestDist := math.MaxFloat64
	for _, n := range s.graph.Nodes {
		r := AttributesFor(n.Type).Radius
		dx := n.Position.X - p.X
		dy := n.Position.Y - p.Y
		dist := math.Hypot(dx, dy)
		if dist <= r && dist < bestDist {
			best = n.ID
			bestDist = dist
		}
	}
	return best
}

// Snapshot returns a deep copy of the current graph for readers.
func (s *Store) Snapshot() *Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone()
}

// Load replaces the whole graph with an imported one. Edges whose endpoints
// are missing from the node set are rejected up front so a malformed import
// never becomes the live graph.
func (s *Store) Load(g *Graph) error {
	if g == nil {
		return errors.New("nil graph")
	}
	for id, e := range g.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			return fmt.Errorf("edge %s: from endpoint %s missing", id, e.From)
		}
		if _, ok := g.Nodes[e.To]; !ok {
			return fmt.Errorf("edge %s: to endpoint %s missing", id, e.To)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g.Clone()
	return nil
}

// reachable reports whether dst can be reached from src by following
// from -> to edges. Caller must hold the lock.
func (s *Store) reachable(src, dst string) bool {
	if src == dst {
		return true
	}
	visited := map[string]bool{src: true}
	stack := []string{src}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range s.graph.Edges {
			if e.From != cur {
				continue
			}
			if e.To == dst {
				return true
			}
			if !visited[e.To] {
				visited[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}
	return false
}

func clampPoint(p Point) Point {
	return Point{
		X: math.Min(math.Max(p.X, 0), CanvasSize),
		Y: math.Min(math.Max(p.Y, 0), CanvasSize),
	}
}
