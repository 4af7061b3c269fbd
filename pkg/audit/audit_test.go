package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pipewright/pipewright/pkg/engine"
	"github.com/pipewright/pipewright/pkg/graph"
)

func auditGraph() (*graph.Graph, map[string]engine.Verdict) {
	g := graph.NewGraph()
	g.Nodes["n1"] = &graph.Node{ID: "n1", Type: graph.NodeMeter, Name: "Meter"}
	g.Nodes["n2"] = &graph.Node{ID: "n2", Type: graph.NodeAppliance, Name: "Furnace", Demand: 80000}
	g.Edges["e1"] = &graph.Edge{ID: "e1", From: "n1", To: "n2", Size: graph.SizeHalf, Length: 90}
	verdicts := engine.Validate(g, engine.DefaultPressureDrop)
	return g, verdicts
}

func TestRun_Success(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "Summary\nLooks fine.\n\nFindings\nNone."}}},
		})
	}))
	defer srv.Close()

	s := NewService(srv.URL, "test-token", "")
	g, verdicts := auditGraph()

	narrative := s.Run(context.Background(), g, verdicts)
	if !strings.Contains(narrative, "Looks fine") {
		t.Errorf("expected service narrative, got %q", narrative)
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(gotBody.Messages))
	}
	if !strings.Contains(gotBody.Messages[1].Content, "Furnace") {
		t.Error("prompt must describe the layout")
	}
	if !strings.Contains(gotBody.Messages[1].Content, "OVERLOADED") {
		t.Error("prompt must flag overloaded segments")
	}
}

func TestRun_FallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewService(srv.URL, "", "")
	g, verdicts := auditGraph()

	if narrative := s.Run(context.Background(), g, verdicts); narrative != FallbackNarrative {
		t.Error("server error must yield the fixed fallback narrative")
	}
}

func TestRun_FallbackOnUnreachable(t *testing.T) {
	s := NewService("http://127.0.0.1:1", "", "")
	g, verdicts := auditGraph()

	if narrative := s.Run(context.Background(), g, verdicts); narrative != FallbackNarrative {
		t.Error("unreachable service must yield the fixed fallback narrative")
	}
}

func TestRun_FallbackOnEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer srv.Close()

	s := NewService(srv.URL, "", "")
	g, verdicts := auditGraph()

	if narrative := s.Run(context.Background(), g, verdicts); narrative != FallbackNarrative {
		t.Error("empty response must yield the fixed fallback narrative")
	}
}

func TestDescribeLayout_Deterministic(t *testing.T) {
	g, verdicts := auditGraph()
	a := describeLayout(g, verdicts)
	b := describeLayout(g, verdicts)
	if a != b {
		t.Error("layout description must be deterministic")
	}
}
