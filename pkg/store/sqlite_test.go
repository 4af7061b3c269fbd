package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pipewright/pipewright/pkg/graph"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "pipewright-store-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s, err := NewStore(filepath.Join(tmpDir, "pipewright.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleGraph() *graph.Graph {
	g := graph.NewGraph()
	g.Nodes["n1"] = &graph.Node{ID: "n1", Type: graph.NodeMeter, Name: "Meter", Position: graph.Point{X: 100, Y: 100}}
	g.Nodes["n2"] = &graph.Node{ID: "n2", Type: graph.NodeAppliance, Name: "Range", Demand: 65000, Position: graph.Point{X: 400, Y: 200}}
	g.Edges["e1"] = &graph.Edge{ID: "e1", From: "n1", To: "n2", Size: graph.SizeThreeQuarter, Length: 15}
	return g
}

func TestNewStore_CreatesSchema(t *testing.T) {
	s := newTestStore(t)

	var tableName string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='projects'").Scan(&tableName)
	if err != nil {
		t.Fatalf("failed to query sqlite_master for projects table: %v", err)
	}
	if tableName != "projects" {
		t.Error("expected table 'projects' to exist")
	}
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &Project{Name: "house-a", Graph: sampleGraph()}
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load(ctx, "house-a")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Graph.Nodes) != 2 || len(loaded.Graph.Edges) != 1 {
		t.Fatalf("roundtrip lost structure: %d nodes, %d edges", len(loaded.Graph.Nodes), len(loaded.Graph.Edges))
	}
	if loaded.Graph.Nodes["n2"].Demand != 65000 {
		t.Errorf("demand did not survive roundtrip: %d", loaded.Graph.Nodes["n2"].Demand)
	}
	if loaded.Graph.Edges["e1"].Size != graph.SizeThreeQuarter {
		t.Errorf("size did not survive roundtrip: %q", loaded.Graph.Edges["e1"].Size)
	}
}

func TestSave_Overwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &Project{Name: "p", Graph: sampleGraph()}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	g := graph.NewGraph()
	g.Nodes["only"] = &graph.Node{ID: "only", Type: graph.NodeJunction}
	if err := s.Save(ctx, &Project{Name: "p", Graph: g, SavedAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := s.Load(ctx, "p")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Graph.Nodes) != 1 {
		t.Errorf("expected overwrite, got %d nodes", len(loaded.Graph.Nodes))
	}
}

func TestList_ReportsCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &Project{Name: "a", Graph: sampleGraph()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, &Project{Name: "b", Graph: graph.NewGraph()}); err != nil {
		t.Fatalf("save: %v", err)
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Name == "a" && (info.Nodes != 2 || info.Edges != 1) {
			t.Errorf("project a counts wrong: %+v", info)
		}
	}
}

func TestLoadDelete_Missing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Load(ctx, "ghost"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound from Load, got %v", err)
	}
	if err := s.Delete(ctx, "ghost"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound from Delete, got %v", err)
	}
}

func TestDelete_Removes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &Project{Name: "gone", Graph: sampleGraph()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete(ctx, "gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(ctx, "gone"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected project to be gone, got %v", err)
	}
}
