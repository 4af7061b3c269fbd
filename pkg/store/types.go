package store

import (
	"context"
	"errors"
	"time"

	"github.com/pipewright/pipewright/pkg/graph"
)

// ErrProjectNotFound is returned when loading or deleting a project that
// does not exist.
var ErrProjectNotFound = errors.New("project not found")

// Project is the unit of persistence: the whole (nodes, edges, name)
// triple owned by the application shell.
type Project struct {
	Name    string       `json:"name"`
	SavedAt time.Time    `json:"saved_at"`
	Graph   *graph.Graph `json:"graph"`
}

// ProjectInfo is a listing entry without the graph payload.
type ProjectInfo struct {
	Name    string    `json:"name"`
	SavedAt time.Time `json:"saved_at"`
	Nodes   int       `json:"nodes"`
	Edges   int       `json:"edges"`
}

// ProjectStore persists named projects. Implementations: SQLite for local
// use, Redis for shared deployments.
type ProjectStore interface {
	Save(ctx context.Context, p *Project) error
	Load(ctx context.Context, name string) (*Project, error)
	List(ctx context.Context) ([]ProjectInfo, error)
	Delete(ctx context.Context, name string) error
}
