package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pipewright/pipewright/pkg/editor"
	"github.com/pipewright/pipewright/pkg/engine"
	"github.com/pipewright/pipewright/pkg/graph"
	"github.com/pipewright/pipewright/pkg/store"
)

// Context keys
type contextKey string

const traceIDKey contextKey = "trace_id"

// Interfaces for dependencies to enable mocking

// ProjectStoreInterface is the slice of the project store the API needs.
type ProjectStoreInterface interface {
	Save(ctx context.Context, p *store.Project) error
	Load(ctx context.Context, name string) (*store.Project, error)
	List(ctx context.Context) ([]store.ProjectInfo, error)
	Delete(ctx context.Context, name string) error
}

// AuditorInterface produces a narrative for a layout snapshot. The
// implementation is expected to degrade to a fixed fallback on failure
// rather than returning an error.
type AuditorInterface interface {
	Run(ctx context.Context, g *graph.Graph, verdicts map[string]engine.Verdict) string
}

// Server encapsulates the HTTP API server
type Server struct {
	session  *editor.Session
	projects ProjectStoreInterface
	auditor  AuditorInterface
	server   *http.Server
}

// NewServer creates a new API server instance. projects and auditor may
// be nil; the corresponding endpoints then answer 503.
func NewServer(session *editor.Session, projects ProjectStoreInterface, auditor AuditorInterface, addr string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		session:  session,
		projects: projects,
		auditor:  auditor,
	}

	mux.HandleFunc("/v1/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/graph", s.handleGraph)
	mux.HandleFunc("/v1/pointer", s.handlePointer)
	mux.HandleFunc("/v1/mode", s.handleMode)
	mux.HandleFunc("/v1/config", s.handleConfig)
	mux.HandleFunc("/v1/nodes", s.handleNodes)
	mux.HandleFunc("/v1/nodes/", s.handleNodeByID)
	mux.HandleFunc("/v1/edges", s.handleEdges)
	mux.HandleFunc("/v1/edges/", s.handleEdgeByID)
	mux.HandleFunc("/v1/project", s.handleProject)
	mux.HandleFunc("/v1/projects", s.handleProjects)
	mux.HandleFunc("/v1/projects/", s.handleProjectByName)
	mux.HandleFunc("/v1/audit", s.handleAudit)
	mux.HandleFunc("/v1/reports/materials", s.handleMaterialsReport)
	mux.HandleFunc("/v1/reports/validation", s.handleValidationReport)

	// Middleware: Logging, Panic Recovery, Security Headers
	handler := withLogging(withRecovery(withSecureHeaders(mux)))

	if addr == "" {
		addr = ":8091"
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return s
}

// Handler exposes the configured handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the HTTP server (blocking)
func (s *Server) Start() error {
	fmt.Printf(`{"level":"info","msg":"server_starting","addr":"%s"}`+"\n", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println(`{"level":"info","msg":"server_stopping"}`)
	return s.server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_encode_response","error":"%v"}`+"\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`+"\n", code)
}

// Middleware: Panic Recovery
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				fmt.Printf(`{"level":"error","msg":"panic_recovered","error":"%v","path":"%s"}`+"\n", err, r.URL.Path)
				http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = generateTraceID()
		}

		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		r = r.WithContext(ctx)

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		fmt.Printf(`{"level":"info","msg":"http_request","trace_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`+"\n",
			traceID, r.Method, r.URL.Path, ww.status, duration.Milliseconds())
	})
}

// Middleware: Security Headers
func withSecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

func getTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// statusWriter captures HTTP status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func generateTraceID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
