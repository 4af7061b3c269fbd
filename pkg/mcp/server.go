package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pipewright/pipewright/pkg/client"
	"github.com/pipewright/pipewright/pkg/graph"
)

// Server adapts pipewright-d to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"pipewright",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// pipewright://layout
	s.mcpServer.AddResource(mcp.NewResource(
		"pipewright://layout",
		"Piping Layout",
		mcp.WithResourceDescription("The current piping graph: components, segments, and per-segment validation verdicts"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadLayout)

	// pipewright://verdicts
	s.mcpServer.AddResource(mcp.NewResource(
		"pipewright://verdicts",
		"Validation Verdicts",
		mcp.WithResourceDescription("Flow versus capacity for every segment, overloaded segments flagged"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadVerdicts)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"add_component",
		mcp.WithDescription("Place a piping component on the canvas. Returns the new component's id."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Component type: METER, JUNCTION, MANIFOLD, or APPLIANCE")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Canvas x position (0-1000)")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Canvas y position (0-1000)")),
		mcp.WithString("name", mcp.Description("Display name (defaults per type)")),
	), s.handleAddComponent)

	s.mcpServer.AddTool(mcp.NewTool(
		"connect_components",
		mcp.WithDescription("Draw a pipe segment between two components. Flow runs from 'from' toward 'to'."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Upstream component id")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Downstream component id")),
		mcp.WithString("size", mcp.Description("Nominal pipe size: 1/2, 3/4, 1, 1-1/4, 1-1/2, or 2 (default 3/4)")),
		mcp.WithNumber("length", mcp.Description("Segment length in feet (default 10)")),
	), s.handleConnectComponents)

	s.mcpServer.AddTool(mcp.NewTool(
		"set_demand",
		mcp.WithDescription("Set an appliance's gas demand in BTU/h and revalidate the layout."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Appliance component id")),
		mcp.WithNumber("demand", mcp.Required(), mcp.Description("Demand in BTU/h (non-negative)")),
	), s.handleSetDemand)

	s.mcpServer.AddTool(mcp.NewTool(
		"run_audit",
		mcp.WithDescription("Run an advisory audit over the current layout. Returns a narrative report."),
	), s.handleRunAudit)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"pipewright-aware",
		mcp.WithPromptDescription("Provides context about Pipewright concepts (components, segments, flow, capacity)"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadLayout(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	state, err := s.apiClient.GetState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch layout: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layout: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// verdictRow flattens one segment verdict into a model-friendly record
// with resolved endpoint names.
type verdictRow struct {
	EdgeID   string `json:"edge_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Flow     int64  `json:"flow_btuh"`
	Capacity int64  `json:"capacity_btuh"`
	IsValid  bool   `json:"is_valid"`
}

func (s *Server) handleReadVerdicts(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	state, err := s.apiClient.GetState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch layout: %w", err)
	}

	var rows []verdictRow
	for id, v := range state.Verdicts {
		r := verdictRow{EdgeID: id, Flow: v.Flow, Capacity: v.Capacity, IsValid: v.IsValid}
		if e, ok := state.Graph.Edges[id]; ok {
			if n, ok := state.Graph.Nodes[e.From]; ok {
				r.From = n.Name
			}
			if n, ok := state.Graph.Nodes[e.To]; ok {
				r.To = n.Name
			}
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EdgeID < rows[j].EdgeID })

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal verdicts: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleAddComponent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeType := mcp.ParseString(request, "type", "")
	x := mcp.ParseFloat64(request, "x", 0)
	y := mcp.ParseFloat64(request, "y", 0)
	name := mcp.ParseString(request, "name", "")

	id, err := s.apiClient.AddNode(ctx, graph.NodeType(nodeType), graph.Point{X: x, Y: y}, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Placed %s component: %s", nodeType, id)), nil
}

func (s *Server) handleConnectComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := mcp.ParseString(request, "from", "")
	to := mcp.ParseString(request, "to", "")
	size := mcp.ParseString(request, "size", "3/4")
	length := mcp.ParseFloat64(request, "length", 10)

	id, err := s.apiClient.AddEdge(ctx, from, to, graph.PipeSize(size), length)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	// Report the verdict alongside the id so the model sees an overload
	// without a second round trip.
	state, err := s.apiClient.GetState(ctx)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Connected: %s", id)), nil
	}
	v := state.Verdicts[id]
	status := "within capacity"
	if !v.IsValid {
		status = "OVERLOADED"
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Connected: %s\nFlow: %d BTU/h, Capacity: %d BTU/h (%s)", id, v.Flow, v.Capacity, status)), nil
}

func (s *Server) handleSetDemand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "id", "")
	demand := mcp.ParseFloat64(request, "demand", 0)

	if err := s.apiClient.SetDemand(ctx, id, int64(demand)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Set demand of %s to %d BTU/h", id, int64(demand))), nil
}

func (s *Server) handleRunAudit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.apiClient.RunAudit(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText(result.Narrative), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "pipewright-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are interacting with Pipewright, an interactive gas piping layout editor.

Concepts:
- Component: A node on the canvas. METER is the supply, APPLIANCE consumes gas
  (it has a demand in BTU/h), JUNCTION and MANIFOLD branch the run.
- Segment: A directed pipe between two components with a nominal size and a
  length in feet. Flow runs from the meter outward; loops are rejected.
- Flow: The sum of all appliance demands downstream of a segment.
- Capacity: What a segment can carry at the configured pressure drop, derived
  from its size and length. A segment is overloaded when flow exceeds capacity.

Use 'add_component' and 'connect_components' to build a layout, read
'pipewright://verdicts' to see which segments are overloaded, and call
'run_audit' for a narrative review. Fix overloads by upsizing the segment or
shortening the run.
`

	return mcp.NewGetPromptResult(
		"pipewright-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
