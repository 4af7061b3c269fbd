package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pipewright/pipewright/pkg/engine"
	"github.com/pipewright/pipewright/pkg/graph"
)

// Config carries the per-project scalars the session needs: the design
// pressure drop shared by every segment, and the defaults stamped onto
// newly drawn pipes.
type Config struct {
	DesignPressureDrop float64        `json:"design_pressure_drop"`
	DefaultSize        graph.PipeSize `json:"default_size"`
	DefaultLength      float64        `json:"default_length"`
}

// DefaultConfig returns the stock configuration: 0.5 in WC drop, 3/4"
// pipe, 10 ft segments.
func DefaultConfig() Config {
	return Config{
		DesignPressureDrop: engine.DefaultPressureDrop,
		DefaultSize:        graph.SizeThreeQuarter,
		DefaultLength:      10,
	}
}

// Session binds the interaction machine to the graph store and keeps the
// validation mapping current. It is the single writer: every mutation,
// whether decoded from a pointer gesture or requested as an explicit edit,
// goes through it and is followed by an unconditional revalidation.
type Session struct {
	mu       sync.RWMutex
	cfg      Config
	name     string
	store    *graph.Store
	state    State
	verdicts map[string]engine.Verdict

	// pendingEditID is set when a double-tap requested an edit form; the
	// shell clears it once the form is shown.
	pendingEditID string
}

// NewSession creates an empty session with the given configuration.
func NewSession(cfg Config) *Session {
	if cfg.DesignPressureDrop <= 0 {
		cfg.DesignPressureDrop = engine.DefaultPressureDrop
	}
	if !graph.ValidSize(cfg.DefaultSize) {
		cfg.DefaultSize = graph.SizeThreeQuarter
	}
	if cfg.DefaultLength <= 0 {
		cfg.DefaultLength = 10
	}
	s := &Session{
		cfg:      cfg,
		store:    graph.NewStore(),
		state:    NewState(),
		verdicts: map[string]engine.Verdict{},
	}
	return s
}

// HandlePointer feeds one input event through the reducer and applies the
// resulting intents. Structural rejections (a cycle-closing pipe) are
// logged and swallowed; they leave the graph untouched.
func (s *Session) HandlePointer(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, intents := Step(s.state, ev)
	s.state = next

	for _, intent := range intents {
		if err := s.applyIntent(intent); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) applyIntent(intent Intent) error {
	switch intent.Kind {
	case IntentSelect, IntentClearSelection:
		// Selection already lives in the reducer state.
		return nil

	case IntentRequestEdit:
		s.pendingEditID = intent.NodeID
		return nil

	case IntentMoveNode:
		if err := s.store.MoveNode(intent.NodeID, intent.Pos); err != nil {
			// The node can vanish mid-drag (deleted elsewhere); stale
			// move intents are not an error.
			if errors.Is(err, graph.ErrNodeNotFound) {
				return nil
			}
			return err
		}
		s.revalidate()
		return nil

	case IntentDeleteNode:
		if err := s.store.DeleteNode(intent.NodeID); err != nil {
			if errors.Is(err, graph.ErrNodeNotFound) {
				return nil
			}
			return err
		}
		s.revalidate()
		return nil

	case IntentAddEdge:
		_, err := s.store.AddEdge(intent.From, intent.To, s.cfg.DefaultSize, s.cfg.DefaultLength)
		if err != nil {
			if errors.Is(err, graph.ErrCycle) {
				fmt.Printf(`{"level":"warn","msg":"pipe_rejected_cycle","from":"%s","to":"%s"}`+"\n", intent.From, intent.To)
				return nil
			}
			if errors.Is(err, graph.ErrNodeNotFound) {
				return nil
			}
			return err
		}
		s.revalidate()
		return nil
	}
	return nil
}

// SetMode switches the editing tool.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SetMode(s.state, m)
}

// AddNode places a new component and revalidates.
func (s *Session) AddNode(t graph.NodeType, pos graph.Point, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.AddNode(t, pos, name)
	if err != nil {
		return "", err
	}
	s.revalidate()
	return id, nil
}

// DeleteNode removes a component, cascading to its segments.
func (s *Session) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteNode(id); err != nil {
		return err
	}
	if s.state.SelectedID == id {
		s.state.SelectedID = ""
	}
	if s.state.PipeSourceID == id {
		s.state.PipeSourceID = ""
	}
	s.revalidate()
	return nil
}

// RenameNode updates a node's label.
func (s *Session) RenameNode(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.RenameNode(id, name); err != nil {
		return err
	}
	s.revalidate()
	return nil
}

// SetDemand updates an appliance's consumption rate and revalidates.
func (s *Session) SetDemand(id string, demand int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetDemand(id, demand); err != nil {
		return err
	}
	s.revalidate()
	return nil
}

// MoveNode repositions a node outside of a drag gesture.
func (s *Session) MoveNode(id string, pos graph.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.MoveNode(id, pos); err != nil {
		return err
	}
	s.revalidate()
	return nil
}

// AddEdge draws a segment with explicit size and length.
func (s *Session) AddEdge(from, to string, size graph.PipeSize, length float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.AddEdge(from, to, size, length)
	if err != nil {
		return "", err
	}
	s.revalidate()
	return id, nil
}

// SetEdgeSize changes a segment's diameter and revalidates.
func (s *Session) SetEdgeSize(id string, size graph.PipeSize) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetEdgeSize(id, size); err != nil {
		return err
	}
	s.revalidate()
	return nil
}

// SetEdgeLength changes a segment's length and revalidates.
func (s *Session) SetEdgeLength(id string, length float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetEdgeLength(id, length); err != nil {
		return err
	}
	s.revalidate()
	return nil
}

// DeleteEdge removes a single segment and revalidates.
func (s *Session) DeleteEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteEdge(id); err != nil {
		return err
	}
	s.revalidate()
	return nil
}

// HitTest resolves a canvas point to the node covering it, if any.
func (s *Session) HitTest(p graph.Point) string {
	return s.store.HitTest(p)
}

// Graph returns a deep copy of the current graph.
func (s *Session) Graph() *graph.Graph {
	return s.store.Snapshot()
}

// Verdicts returns a copy of the current validation mapping.
func (s *Session) Verdicts() map[string]engine.Verdict {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]engine.Verdict, len(s.verdicts))
	for id, v := range s.verdicts {
		out[id] = v
	}
	return out
}

// UIState returns the interaction machine's current state for renderers.
func (s *Session) UIState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// PendingEdit returns the node a double-tap asked to edit and clears the
// request.
func (s *Session) PendingEdit() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingEditID == "" {
		return "", false
	}
	id := s.pendingEditID
	s.pendingEditID = ""
	return id, true
}

// Config returns the session's current configuration.
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig replaces the configuration scalars and revalidates, since the
// design pressure drop feeds every capacity figure.
func (s *Session) SetConfig(cfg Config) error {
	if cfg.DesignPressureDrop <= 0 {
		return fmt.Errorf("design pressure drop must be positive, got %g", cfg.DesignPressureDrop)
	}
	if !graph.ValidSize(cfg.DefaultSize) {
		return fmt.Errorf("unknown default pipe size %q", cfg.DefaultSize)
	}
	if cfg.DefaultLength <= 0 {
		return fmt.Errorf("default length must be positive, got %g", cfg.DefaultLength)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.revalidate()
	return nil
}

// Name returns the project name.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// SetName sets the project name.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// Import replaces the session's graph with a deserialized one. A rejected
// import leaves the live graph untouched.
func (s *Session) Import(name string, g *graph.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Load(g); err != nil {
		return fmt.Errorf("import rejected: %w", err)
	}
	s.name = name
	s.state = SetMode(NewState(), s.state.Mode)
	s.revalidate()
	return nil
}

// revalidate recomputes the verdict mapping from scratch and refreshes
// the gauges. Caller must hold the write lock.
func (s *Session) revalidate() {
	g := s.store.Snapshot()
	s.verdicts = engine.Validate(g, s.cfg.DesignPressureDrop)

	invalid := 0
	for _, v := range s.verdicts {
		if !v.IsValid {
			invalid++
		}
	}
	engine.PipewrightRevalidations.Inc()
	engine.PipewrightInvalidSegments.Set(float64(invalid))
	engine.PipewrightEdges.Set(float64(len(g.Edges)))

	counts := map[graph.NodeType]int{}
	for _, n := range g.Nodes {
		counts[n.Type]++
	}
	for _, t := range []graph.NodeType{graph.NodeMeter, graph.NodeJunction, graph.NodeManifold, graph.NodeAppliance} {
		engine.PipewrightNodes.WithLabelValues(string(t)).Set(float64(counts[t]))
	}
}
