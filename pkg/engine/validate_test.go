package engine

import (
	"reflect"
	"testing"

	"github.com/pipewright/pipewright/pkg/graph"
)

func TestValidate_CoversEveryEdge(t *testing.T) {
	g := buildGraph(
		map[string]*graph.Node{
			"m": {Type: graph.NodeMeter},
			"j": {Type: graph.NodeJunction},
			"a": {Type: graph.NodeAppliance, Demand: 40000},
		},
		map[string]*graph.Edge{
			"mj": {From: "m", To: "j"},
			"ja": {From: "j", To: "a"},
		},
	)

	verdicts := Validate(g, DefaultPressureDrop)
	if len(verdicts) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(verdicts))
	}
	for id := range g.Edges {
		if _, ok := verdicts[id]; !ok {
			t.Errorf("missing verdict for edge %s", id)
		}
	}
}

func TestValidate_OverloadedSegment(t *testing.T) {
	// A long 1/2" run feeding 80000 BTU/h cannot carry it.
	g := buildGraph(
		map[string]*graph.Node{
			"m":  {Type: graph.NodeMeter},
			"j":  {Type: graph.NodeJunction},
			"a1": {Type: graph.NodeAppliance, Demand: 40000},
			"a2": {Type: graph.NodeAppliance, Demand: 40000},
		},
		map[string]*graph.Edge{
			"mj":  {From: "m", To: "j", Size: graph.SizeHalf, Length: 120},
			"ja1": {From: "j", To: "a1", Size: graph.SizeHalf, Length: 5},
			"ja2": {From: "j", To: "a2", Size: graph.SizeHalf, Length: 5},
		},
	)

	verdicts := Validate(g, DefaultPressureDrop)
	v := verdicts["mj"]
	if v.Flow != 80000 {
		t.Fatalf("expected flow 80000, got %d", v.Flow)
	}
	if v.Capacity >= v.Flow {
		t.Fatalf("test premise broken: capacity %d should be below flow %d", v.Capacity, v.Flow)
	}
	if v.IsValid {
		t.Error("segment with flow above capacity must be invalid")
	}
}

func TestValidate_ExactCapacityIsValid(t *testing.T) {
	// Flow exactly equal to capacity passes: the comparison is non-strict.
	capacity := Capacity(graph.SizeThreeQuarter, 25, DefaultPressureDrop)
	if capacity <= 0 {
		t.Fatal("test premise broken: expected positive capacity")
	}

	g := buildGraph(
		map[string]*graph.Node{
			"m": {Type: graph.NodeMeter},
			"a": {Type: graph.NodeAppliance, Demand: capacity},
		},
		map[string]*graph.Edge{
			"ma": {From: "m", To: "a", Size: graph.SizeThreeQuarter, Length: 25},
		},
	)

	v := Validate(g, DefaultPressureDrop)["ma"]
	if !v.IsValid {
		t.Errorf("flow == capacity (%d) must be valid", capacity)
	}

	// One unit over tips it.
	g.Nodes["a"].Demand = capacity + 1
	v = Validate(g, DefaultPressureDrop)["ma"]
	if v.IsValid {
		t.Error("flow one unit above capacity must be invalid")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	g := buildGraph(
		map[string]*graph.Node{
			"m":  {Type: graph.NodeMeter},
			"j":  {Type: graph.NodeJunction},
			"a1": {Type: graph.NodeAppliance, Demand: 40000},
			"a2": {Type: graph.NodeAppliance, Demand: 65000},
		},
		map[string]*graph.Edge{
			"mj":  {From: "m", To: "j"},
			"ja1": {From: "j", To: "a1"},
			"ja2": {From: "j", To: "a2"},
		},
	)

	first := Validate(g, DefaultPressureDrop)
	second := Validate(g, DefaultPressureDrop)
	if !reflect.DeepEqual(first, second) {
		t.Error("validation of an unchanged graph must be bit-identical")
	}
}

func TestValidate_NoStaleEntries(t *testing.T) {
	g := buildGraph(
		map[string]*graph.Node{
			"m": {Type: graph.NodeMeter},
			"a": {Type: graph.NodeAppliance, Demand: 10000},
		},
		map[string]*graph.Edge{
			"ma": {From: "m", To: "a"},
		},
	)

	before := Validate(g, DefaultPressureDrop)
	if _, ok := before["ma"]; !ok {
		t.Fatal("expected verdict for ma")
	}

	delete(g.Edges, "ma")
	after := Validate(g, DefaultPressureDrop)
	if len(after) != 0 {
		t.Errorf("removed edge must not retain a verdict, got %d entries", len(after))
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	verdicts := Validate(graph.NewGraph(), DefaultPressureDrop)
	if len(verdicts) != 0 {
		t.Errorf("empty graph should yield empty mapping, got %d", len(verdicts))
	}
}
