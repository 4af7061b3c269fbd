package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pipewright/pipewright/pkg/graph"
)

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	// Enable WAL mode (Write-Ahead Logging)
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	// One row per named project. Counts are denormalized so listings
	// don't have to parse the payload.
	query := `
	CREATE TABLE IF NOT EXISTS projects (
		name TEXT PRIMARY KEY,
		saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		node_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL,
		payload JSON NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_saved_at ON projects(saved_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create projects table: %w", err)
	}

	return nil
}

// Save upserts a project under its name.
func (s *Store) Save(ctx context.Context, p *Project) error {
	if p == nil || p.Name == "" {
		return fmt.Errorf("project must have a name")
	}
	g := p.Graph
	if g == nil {
		g = graph.NewGraph()
	}

	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	savedAt := p.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (name, saved_at, node_count, edge_count, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			saved_at = excluded.saved_at,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			payload = excluded.payload
	`, p.Name, savedAt, len(g.Nodes), len(g.Edges), string(payload))
	if err != nil {
		return fmt.Errorf("failed to save project %q: %w", p.Name, err)
	}
	return nil
}

// Load fetches a project by name.
func (s *Store) Load(ctx context.Context, name string) (*Project, error) {
	var savedAt time.Time
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT saved_at, payload FROM projects WHERE name = ?`, name,
	).Scan(&savedAt, &payload)
	if err == sql.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %q: %w", name, err)
	}

	g := graph.NewGraph()
	if err := json.Unmarshal([]byte(payload), g); err != nil {
		return nil, fmt.Errorf("corrupt payload for project %q: %w", name, err)
	}

	return &Project{Name: name, SavedAt: savedAt, Graph: g}, nil
}

// List returns every saved project, most recent first.
func (s *Store) List(ctx context.Context) ([]ProjectInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, saved_at, node_count, edge_count FROM projects ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var infos []ProjectInfo
	for rows.Next() {
		var info ProjectInfo
		if err := rows.Scan(&info.Name, &info.SavedAt, &info.Nodes, &info.Edges); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes a saved project by name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete project %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}
