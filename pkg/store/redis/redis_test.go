package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pipewright/pipewright/pkg/graph"
	"github.com/pipewright/pipewright/pkg/store"
)

func newTestStore(t *testing.T) *ProjectStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewProjectStore(client)
}

func sampleProject(name string) *store.Project {
	g := graph.NewGraph()
	g.Nodes["n1"] = &graph.Node{ID: "n1", Type: graph.NodeMeter, Name: "Meter"}
	g.Nodes["n2"] = &graph.Node{ID: "n2", Type: graph.NodeAppliance, Name: "Boiler", Demand: 80000}
	g.Edges["e1"] = &graph.Edge{ID: "e1", From: "n1", To: "n2", Size: graph.SizeOne, Length: 25}
	return &store.Project{Name: name, Graph: g}
}

func TestRedisStore_SaveLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleProject("shop")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	p, err := s.Load(ctx, "shop")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(p.Graph.Nodes) != 2 || len(p.Graph.Edges) != 1 {
		t.Errorf("roundtrip lost structure: %d nodes, %d edges", len(p.Graph.Nodes), len(p.Graph.Edges))
	}
	if p.Graph.Nodes["n2"].Demand != 80000 {
		t.Errorf("demand did not survive: %d", p.Graph.Nodes["n2"].Demand)
	}
}

func TestRedisStore_List(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, sampleProject(name)); err != nil {
			t.Fatalf("Save %s failed: %v", name, err)
		}
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Nodes != 2 || info.Edges != 1 {
			t.Errorf("listing counts wrong for %s: %+v", info.Name, info)
		}
	}
}

func TestRedisStore_DeleteAndMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleProject("temp")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Delete(ctx, "temp"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Load(ctx, "temp"); !errors.Is(err, store.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "temp"); !errors.Is(err, store.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound on double delete, got %v", err)
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("expected empty listing after delete, got %d", len(infos))
	}
}
