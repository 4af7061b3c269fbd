package api

import (
	"github.com/pipewright/pipewright/pkg/editor"
	"github.com/pipewright/pipewright/pkg/engine"
	"github.com/pipewright/pipewright/pkg/graph"
)

// StateResponse is the read-only view served to renderers: the current
// graph, the verdict mapping, and the interaction machine's transient
// state. Renderers never mutate any of it directly; they forward pointer
// events instead.
type StateResponse struct {
	Name     string                    `json:"name"`
	Graph    *graph.Graph              `json:"graph"`
	Verdicts map[string]engine.Verdict `json:"verdicts"`
	UI       editor.State              `json:"ui"`
	Config   editor.Config             `json:"config"`
}

// ProjectDocument is the import/export wire shape of a project.
type ProjectDocument struct {
	Name  string       `json:"name"`
	Graph *graph.Graph `json:"graph"`
}

// AddNodeRequest creates a component.
type AddNodeRequest struct {
	Type     graph.NodeType `json:"type"`
	Position graph.Point    `json:"position"`
	Name     string         `json:"name"`
}

// PatchNodeRequest edits a component in place. Nil fields are left alone.
type PatchNodeRequest struct {
	Name     *string      `json:"name,omitempty"`
	Demand   *int64       `json:"demand,omitempty"`
	Position *graph.Point `json:"position,omitempty"`
}

// AddEdgeRequest draws a segment. Size and Length fall back to the
// session defaults when omitted.
type AddEdgeRequest struct {
	From   string         `json:"from"`
	To     string         `json:"to"`
	Size   graph.PipeSize `json:"size,omitempty"`
	Length float64        `json:"length,omitempty"`
}

// PatchEdgeRequest edits a segment in place. Nil fields are left alone.
type PatchEdgeRequest struct {
	Size   *graph.PipeSize `json:"size,omitempty"`
	Length *float64        `json:"length,omitempty"`
}

// ModeRequest switches the editing tool.
type ModeRequest struct {
	Mode editor.Mode `json:"mode"`
}

// IDResponse returns a newly assigned identifier.
type IDResponse struct {
	ID string `json:"id"`
}

// AuditResponse carries the audit narrative.
type AuditResponse struct {
	Narrative string `json:"narrative"`
}
