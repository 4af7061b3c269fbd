package client

import (
	"github.com/pipewright/pipewright/pkg/editor"
	"github.com/pipewright/pipewright/pkg/engine"
	"github.com/pipewright/pipewright/pkg/graph"
	"github.com/pipewright/pipewright/pkg/store"
)

// LayoutState is the full read-only view the daemon serves to renderers:
// the graph, the verdict mapping, and the interaction machine's transient
// state.
type LayoutState struct {
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

// AuditResult carries the audit narrative back to the caller.
type AuditResult struct {
	Narrative string `json:"narrative"`
}

// Status mirrors the daemon health response.
type Status struct {
	Status string `json:"status"`
}

// ProjectInfo re-exports the store listing entry for SDK callers.
type ProjectInfo = store.ProjectInfo
