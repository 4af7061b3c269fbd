package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pipewright/pipewright/pkg/engine"
	"github.com/pipewright/pipewright/pkg/graph"
)

// Service produces a narrative audit of a piping layout by sending a
// read-only snapshot to an OpenAI-compatible chat-completions endpoint.
// The rest of the system never depends on the response: any failure falls
// back to the fixed local narrative.
type Service struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

// NewService creates an audit service. baseURL defaults to the OpenAI API;
// model defaults to gpt-4o-mini.
func NewService(baseURL, token, model string) *Service {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Service{
		baseURL: baseURL,
		token:   token,
		model:   model,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Run generates the audit narrative for the given snapshot. It never
// returns an error for external failures; the fallback narrative covers
// those, and the outcome is reported through the audit counter.
func (s *Service) Run(ctx context.Context, g *graph.Graph, verdicts map[string]engine.Verdict) string {
	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a gas piping design reviewer. Write a short two-section audit: Summary, then Findings."},
			{Role: "user", Content: describeLayout(g, verdicts)},
		},
	})
	if err != nil {
		engine.PipewrightAuditTotal.WithLabelValues("fallback").Inc()
		return FallbackNarrative
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(s.baseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		engine.PipewrightAuditTotal.WithLabelValues("fallback").Inc()
		return FallbackNarrative
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		fmt.Printf(`{"level":"warn","msg":"audit_unreachable","error":"%v"}`+"\n", err)
		engine.PipewrightAuditTotal.WithLabelValues("fallback").Inc()
		return FallbackNarrative
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf(`{"level":"warn","msg":"audit_failed","status":%d}`+"\n", resp.StatusCode)
		engine.PipewrightAuditTotal.WithLabelValues("fallback").Inc()
		return FallbackNarrative
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || len(parsed.Choices) == 0 {
		engine.PipewrightAuditTotal.WithLabelValues("fallback").Inc()
		return FallbackNarrative
	}

	narrative := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if narrative == "" {
		engine.PipewrightAuditTotal.WithLabelValues("fallback").Inc()
		return FallbackNarrative
	}

	engine.PipewrightAuditTotal.WithLabelValues("success").Inc()
	return narrative
}

// describeLayout renders the snapshot as a compact text table for the
// prompt. Ordering is sorted so the same layout always yields the same
// prompt.
func describeLayout(g *graph.Graph, verdicts map[string]engine.Verdict) string {
	var b strings.Builder

	nodeIDs := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	b.WriteString("Components:\n")
	for _, id := range nodeIDs {
		n := g.Nodes[id]
		if n.Type == graph.NodeAppliance {
			fmt.Fprintf(&b, "- %s (%s, demand %d BTU/h)\n", n.Name, n.Type, n.Demand)
		} else {
			fmt.Fprintf(&b, "- %s (%s)\n", n.Name, n.Type)
		}
	}

	edgeIDs := make([]string, 0, len(g.Edges))
	for id := range g.Edges {
		edgeIDs = append(edgeIDs, id)
	}
	sort.Strings(edgeIDs)

	b.WriteString("Segments:\n")
	for _, id := range edgeIDs {
		e := g.Edges[id]
		fromName, toName := id, id
		if n, ok := g.Nodes[e.From]; ok {
			fromName = n.Name
		}
		if n, ok := g.Nodes[e.To]; ok {
			toName = n.Name
		}
		v := verdicts[id]
		status := "OK"
		if !v.IsValid {
			status = "OVERLOADED"
		}
		fmt.Fprintf(&b, "- %s -> %s: %s\" x %g ft, flow %d / capacity %d BTU/h [%s]\n",
			fromName, toName, e.Size, e.Length, v.Flow, v.Capacity, status)
	}

	return b.String()
}
