package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pipewright/pipewright/pkg/editor"
	"github.com/pipewright/pipewright/pkg/graph"
	"github.com/pipewright/pipewright/pkg/reports"
	"github.com/pipewright/pipewright/pkg/store"
)

// mapStoreError translates graph and project store sentinels into HTTP
// statuses. Unknown errors fall through to 500.
func mapStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, graph.ErrNodeNotFound), errors.Is(err, graph.ErrEdgeNotFound), errors.Is(err, store.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, graph.ErrCycle):
		writeError(w, http.StatusConflict, "cycle_rejected")
	case errors.Is(err, graph.ErrSelfEdge):
		writeError(w, http.StatusConflict, "self_edge_rejected")
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (s *Server) stateResponse() StateResponse {
	return StateResponse{
		Name:     s.session.Name(),
		Graph:    s.session.Graph(),
		Verdicts: s.session.Verdicts(),
		UI:       s.session.UIState(),
		Config:   s.session.Config(),
	}
}

// GET /v1/graph
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.stateResponse())
}

// POST /v1/pointer
//
// Remote shells send raw gesture events; hit-testing runs here against
// the live graph so the shell never needs its own copy of the node
// radii. Empty target fields are resolved from the event position at
// pointer-down and pointer-up.
func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var ev editor.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	switch ev.Kind {
	case editor.EventPointerDown:
		if ev.TargetID == "" {
			ev.TargetID = s.session.HitTest(ev.Pos)
		}
	case editor.EventPointerUp:
		under := s.session.HitTest(ev.Pos)
		if ev.TargetID == "" {
			ev.TargetID = under
		}
		if ev.UnderID == "" {
			ev.UnderID = under
		}
	}

	if err := s.session.HandlePointer(ev); err != nil {
		fmt.Printf(`{"level":"error","msg":"pointer_failed","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, "pointer_failed")
		return
	}
	writeJSON(w, http.StatusOK, s.stateResponse())
}

// POST /v1/mode
func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Mode != editor.ModeSelect && req.Mode != editor.ModePipe {
		writeError(w, http.StatusBadRequest, "unknown_mode")
		return
	}
	s.session.SetMode(req.Mode)
	writeJSON(w, http.StatusOK, map[string]string{"mode": string(req.Mode)})
}

// GET|PUT /v1/config
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.session.Config())
	case http.MethodPut:
		var cfg editor.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if err := s.session.SetConfig(cfg); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.session.Config())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

// POST /v1/nodes
func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var req AddNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	id, err := s.session.AddNode(req.Type, req.Position, req.Name)
	if err != nil {
		mapStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: id})
}

// PATCH|DELETE /v1/nodes/{id}
func (s *Server) handleNodeByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/nodes/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req PatchNodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.Name != nil {
			if err := s.session.RenameNode(id, *req.Name); err != nil {
				mapStoreError(w, err)
				return
			}
		}
		if req.Demand != nil {
			if err := s.session.SetDemand(id, *req.Demand); err != nil {
				mapStoreError(w, err)
				return
			}
		}
		if req.Position != nil {
			if err := s.session.MoveNode(id, *req.Position); err != nil {
				mapStoreError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, s.stateResponse())
	case http.MethodDelete:
		if err := s.session.DeleteNode(id); err != nil {
			mapStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

// POST /v1/edges
func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var req AddEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	cfg := s.session.Config()
	if req.Size == "" {
		req.Size = cfg.DefaultSize
	}
	if req.Length == 0 {
		req.Length = cfg.DefaultLength
	}
	id, err := s.session.AddEdge(req.From, req.To, req.Size, req.Length)
	if err != nil {
		mapStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: id})
}

// PATCH|DELETE /v1/edges/{id}
func (s *Server) handleEdgeByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/edges/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req PatchEdgeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.Size != nil {
			if err := s.session.SetEdgeSize(id, *req.Size); err != nil {
				mapStoreError(w, err)
				return
			}
		}
		if req.Length != nil {
			if err := s.session.SetEdgeLength(id, *req.Length); err != nil {
				mapStoreError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, s.stateResponse())
	case http.MethodDelete:
		if err := s.session.DeleteEdge(id); err != nil {
			mapStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

// GET|PUT /v1/project (export / import the live project)
func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, ProjectDocument{
			Name:  s.session.Name(),
			Graph: s.session.Graph(),
		})
	case http.MethodPut:
		var doc ProjectDocument
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if doc.Graph == nil {
			writeError(w, http.StatusBadRequest, "missing_graph")
			return
		}
		if err := s.session.Import(doc.Name, doc.Graph); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.stateResponse())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

// GET /v1/projects
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	if s.projects == nil {
		writeError(w, http.StatusServiceUnavailable, "project_store_unavailable")
		return
	}
	infos, err := s.projects.List(r.Context())
	if err != nil {
		fmt.Printf(`{"level":"error","msg":"project_list_failed","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, "project_list_failed")
		return
	}
	if infos == nil {
		infos = []store.ProjectInfo{}
	}
	writeJSON(w, http.StatusOK, infos)
}

// PUT|POST|DELETE /v1/projects/{name}
//
// PUT saves the live project under the name, POST loads a saved project
// into the live session, DELETE removes a saved project.
func (s *Server) handleProjectByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/v1/projects/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if s.projects == nil {
		writeError(w, http.StatusServiceUnavailable, "project_store_unavailable")
		return
	}

	switch r.Method {
	case http.MethodPut:
		g := s.session.Graph()
		p := &store.Project{
			Name:    name,
			SavedAt: time.Now().UTC(),
			Graph:   g,
		}
		if err := s.projects.Save(r.Context(), p); err != nil {
			fmt.Printf(`{"level":"error","msg":"project_save_failed","trace_id":"%s","name":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), name, err)
			writeError(w, http.StatusInternalServerError, "project_save_failed")
			return
		}
		s.session.SetName(name)
		writeJSON(w, http.StatusOK, map[string]string{"saved": name})
	case http.MethodPost:
		p, err := s.projects.Load(r.Context(), name)
		if err != nil {
			mapStoreError(w, err)
			return
		}
		if err := s.session.Import(p.Name, p.Graph); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.stateResponse())
	case http.MethodDelete:
		if err := s.projects.Delete(r.Context(), name); err != nil {
			mapStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": name})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

// POST /v1/audit
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	if s.auditor == nil {
		writeError(w, http.StatusServiceUnavailable, "auditor_unavailable")
		return
	}
	narrative := s.auditor.Run(r.Context(), s.session.Graph(), s.session.Verdicts())
	writeJSON(w, http.StatusOK, AuditResponse{Narrative: narrative})
}

func (s *Server) serveCSV(w http.ResponseWriter, r *http.Request, gen reports.Generator, filename string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	reader, err := gen.Generate(s.session.Graph(), s.session.Verdicts())
	if err != nil {
		fmt.Printf(`{"level":"error","msg":"report_failed","trace_id":"%s","report":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), filename, err)
		writeError(w, http.StatusInternalServerError, "report_failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, reader)
}

// GET /v1/reports/materials
func (s *Server) handleMaterialsReport(w http.ResponseWriter, r *http.Request) {
	s.serveCSV(w, r, reports.NewMaterialsReport(), "materials.csv")
}

// GET /v1/reports/validation
func (s *Server) handleValidationReport(w http.ResponseWriter, r *http.Request) {
	s.serveCSV(w, r, reports.NewValidationReport(), "validation.csv")
}
