package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pipewright/pipewright/pkg/store"
)

const projectsSet = "pipewright:projects"

// ProjectStore persists named projects in Redis. Payloads are stored as
// JSON values keyed by project name, with a set indexing the names so
// listings avoid a keyspace scan.
type ProjectStore struct {
	client *redis.Client
}

// NewProjectStore wraps an existing Redis client.
func NewProjectStore(client *redis.Client) *ProjectStore {
	return &ProjectStore{client: client}
}

func makeKey(name string) string {
	return fmt.Sprintf("pipewright:project:%s", name)
}

// Save upserts a project under its name.
func (s *ProjectStore) Save(ctx context.Context, p *store.Project) error {
	if p == nil || p.Name == "" {
		return fmt.Errorf("project must have a name")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project %q: %w", p.Name, err)
	}

	key := makeKey(p.Name)
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to SET %s: %w", key, err)
	}
	if err := s.client.SAdd(ctx, projectsSet, p.Name).Err(); err != nil {
		return fmt.Errorf("failed to index %s: %w", key, err)
	}
	return nil
}

// Load fetches a project by name.
func (s *ProjectStore) Load(ctx context.Context, name string) (*store.Project, error) {
	data, err := s.client.Get(ctx, makeKey(name)).Result()
	if err == redis.Nil {
		return nil, store.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to GET project %q: %w", name, err)
	}

	var p store.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("corrupt payload for project %q: %w", name, err)
	}
	return &p, nil
}

// List returns listing entries for every indexed project.
func (s *ProjectStore) List(ctx context.Context) ([]store.ProjectInfo, error) {
	names, err := s.client.SMembers(ctx, projectsSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to SMEMBERS %s: %w", projectsSet, err)
	}
	if len(names) == 0 {
		return []store.ProjectInfo{}, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = makeKey(name)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to MGET projects: %w", err)
	}

	var infos []store.ProjectInfo
	for i, val := range values {
		if val == nil {
			// Value expired or was deleted out of band; drop the index
			// entry lazily.
			s.client.SRem(ctx, projectsSet, names[i])
			continue
		}
		str, ok := val.(string)
		if !ok {
			continue
		}
		var p store.Project
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			continue
		}
		info := store.ProjectInfo{Name: p.Name, SavedAt: p.SavedAt}
		if p.Graph != nil {
			info.Nodes = len(p.Graph.Nodes)
			info.Edges = len(p.Graph.Edges)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Delete removes a saved project by name.
func (s *ProjectStore) Delete(ctx context.Context, name string) error {
	removed, err := s.client.Del(ctx, makeKey(name)).Result()
	if err != nil {
		return fmt.Errorf("failed to DEL project %q: %w", name, err)
	}
	if err := s.client.SRem(ctx, projectsSet, name).Err(); err != nil {
		return fmt.Errorf("failed to unindex project %q: %w", name, err)
	}
	if removed == 0 {
		return store.ErrProjectNotFound
	}
	return nil
}
