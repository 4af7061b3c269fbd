package editor

import (
	"time"

	"github.com/pipewright/pipewright/pkg/graph"
)

// State is the complete transient state of the interaction machine. It is
// a value: Step returns a new State rather than mutating ambient
// variables, which keeps the machine testable without a rendering surface.
type State struct {
	Mode Mode `json:"mode"`

	// SelectedID is the currently selected node, "" for none.
	SelectedID string `json:"selected_id,omitempty"`

	// DraggingID is the node under an in-progress drag candidate.
	DraggingID string `json:"dragging_id,omitempty"`

	// PipeSourceID is the locked source of a two-tap pipe gesture.
	PipeSourceID string `json:"pipe_source_id,omitempty"`

	// Pointer is the live pointer position; with a locked pipe source it
	// is the free end of the ghost guide line.
	Pointer graph.Point `json:"pointer"`

	DragStart graph.Point `json:"drag_start"`
	Moved     bool        `json:"moved"`

	LastTappedID string    `json:"last_tapped_id,omitempty"`
	LastTapTime  time.Time `json:"last_tap_time"`
	TapCount     int       `json:"tap_count"`
}

// NewState returns the initial machine state in SELECT mode.
func NewState() State {
	return State{Mode: ModeSelect}
}

// IntentKind names a graph-mutation or selection intent emitted by the
// reducer. Intents are the machine's only output besides the next state;
// applying them to the graph is the session's job.
type IntentKind string

const (
	IntentSelect         IntentKind = "select"
	IntentClearSelection IntentKind = "clear_selection"
	IntentRequestEdit    IntentKind = "request_edit"
	IntentDeleteNode     IntentKind = "delete_node"
	IntentMoveNode       IntentKind = "move_node"
	IntentAddEdge        IntentKind = "add_edge"
)

// Intent is a discrete editing intention decoded from raw input.
type Intent struct {
	Kind   IntentKind  `json:"kind"`
	NodeID string      `json:"node_id,omitempty"`
	From   string      `json:"from,omitempty"`
	To     string      `json:"to,omitempty"`
	Pos    graph.Point `json:"pos"`
}
