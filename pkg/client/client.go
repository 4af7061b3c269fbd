package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pipewright/pipewright/pkg/editor"
	"github.com/pipewright/pipewright/pkg/graph"
)

// Client is the pipewright SDK client.
type Client struct {
	endpoint string
	http     *http.Client
	backoff  BackoffStrategy
	retries  int
}

// NewClient creates a new pipewright client.
// endpoint defaults to "http://127.0.0.1:8091" if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = "http://127.0.0.1:8091"
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoff: DefaultBackoff(),
		retries: 3,
	}
}

// do sends a request, retrying transport errors and 5xx responses with
// exponential backoff. The caller owns closing the response body.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff.Next(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("upstream error: HTTP %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retries+1, lastErr)
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// postJSON issues a request with a JSON body and decodes the response
// into out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) (Status, error) {
	var status Status
	if err := c.getJSON(ctx, "/v1/health", &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

// GetState fetches the full layout state: graph, verdicts, UI state.
func (c *Client) GetState(ctx context.Context) (*LayoutState, error) {
	var state LayoutState
	if err := c.getJSON(ctx, "/v1/graph", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SendPointer forwards one pointer/touch event into the daemon's editor.
func (c *Client) SendPointer(ctx context.Context, ev editor.Event) error {
	return c.postJSON(ctx, "POST", "/v1/pointer", ev, nil)
}

// SetMode switches the daemon's editing tool.
func (c *Client) SetMode(ctx context.Context, mode editor.Mode) error {
	return c.postJSON(ctx, "POST", "/v1/mode", map[string]string{"mode": string(mode)}, nil)
}

// AddNode places a new component.
func (c *Client) AddNode(ctx context.Context, t graph.NodeType, pos graph.Point, name string) (string, error) {
	req := map[string]interface{}{"type": t, "position": pos, "name": name}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, "POST", "/v1/nodes", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// SetDemand updates an appliance's consumption rate in BTU/h.
func (c *Client) SetDemand(ctx context.Context, id string, demand int64) error {
	return c.postJSON(ctx, "PATCH", "/v1/nodes/"+url.PathEscape(id), map[string]int64{"demand": demand}, nil)
}

// DeleteNode removes a component and its segments.
func (c *Client) DeleteNode(ctx context.Context, id string) error {
	return c.postJSON(ctx, "DELETE", "/v1/nodes/"+url.PathEscape(id), nil, nil)
}

// AddEdge draws a segment between two components.
func (c *Client) AddEdge(ctx context.Context, from, to string, size graph.PipeSize, length float64) (string, error) {
	req := map[string]interface{}{"from": from, "to": to, "size": size, "length": length}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, "POST", "/v1/edges", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// ExportProject fetches the current project document.
func (c *Client) ExportProject(ctx context.Context) (*ProjectDocument, error) {
	var doc ProjectDocument
	if err := c.getJSON(ctx, "/v1/project", &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportProject replaces the daemon's live project.
func (c *Client) ImportProject(ctx context.Context, doc *ProjectDocument) error {
	return c.postJSON(ctx, "PUT", "/v1/project", doc, nil)
}

// ListProjects lists saved projects.
func (c *Client) ListProjects(ctx context.Context) ([]ProjectInfo, error) {
	var infos []ProjectInfo
	if err := c.getJSON(ctx, "/v1/projects", &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// SaveProject persists the live project under the given name.
func (c *Client) SaveProject(ctx context.Context, name string) error {
	return c.postJSON(ctx, "PUT", "/v1/projects/"+url.PathEscape(name), nil, nil)
}

// LoadProject replaces the live project with a saved one.
func (c *Client) LoadProject(ctx context.Context, name string) error {
	return c.postJSON(ctx, "POST", "/v1/projects/"+url.PathEscape(name), nil, nil)
}

// RunAudit asks the daemon for an audit narrative.
func (c *Client) RunAudit(ctx context.Context) (AuditResult, error) {
	var result AuditResult
	if err := c.postJSON(ctx, "POST", "/v1/audit", nil, &result); err != nil {
		return AuditResult{}, err
	}
	return result, nil
}

// MaterialsCSV fetches the bill of materials report.
func (c *Client) MaterialsCSV(ctx context.Context) ([]byte, error) {
	resp, err := c.do(ctx, "GET", "/v1/reports/materials", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
