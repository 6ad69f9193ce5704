// Package session provides agent session records and persistence.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// UsageMetadata captures per-call provider usage for a session.
type UsageMetadata struct {
	Provider  string  `json:"provider"`
	Model     string  `json:"model"`
	Tokens    int     `json:"tokens"`
	Cost      float64 `json:"cost"`
	LatencyMS int64   `json:"latency_ms"`
}

// AgentSession is one recorded invocation of an agent action. It is created
// once per orchestration call and immutable after creation.
type AgentSession struct {
	ID          string            `json:"id"`
	AgentID     string            `json:"agent_id"`
	UserID      string            `json:"user_id"`
	ProjectID   string            `json:"project_id"`
	StoryFileID string            `json:"story_file_id"`
	Action      string            `json:"action"`
	Inputs      map[string]string `json:"inputs"`
	Outputs     map[string]string `json:"outputs"`
	Usage       UsageMetadata     `json:"usage"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Response returns the primary response text of the session.
func (s *AgentSession) Response() string {
	return s.Outputs["response"]
}

// Store persists sessions as one JSON file each under a sessions directory.
type Store struct {
	dir   string
	cache map[string]*AgentSession
	mu    sync.RWMutex
}

// NewStore creates a session store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}
	return &Store{
		dir:   dir,
		cache: map[string]*AgentSession{},
	}, nil
}

// Save writes the session to disk and caches it.
func (st *Store) Save(s *AgentSession) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(st.path(s.ID), data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	st.cache[s.ID] = s
	return nil
}

// Get returns a session by id, loading from disk on cache miss.
func (st *Store) Get(id string) (*AgentSession, error) {
	st.mu.RLock()
	if s, ok := st.cache[id]; ok {
		st.mu.RUnlock()
		return s, nil
	}
	st.mu.RUnlock()

	data, err := os.ReadFile(st.path(id))
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}
	var s AgentSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", id, err)
	}

	st.mu.Lock()
	st.cache[id] = &s
	st.mu.Unlock()
	return &s, nil
}

// List returns all persisted sessions, newest first.
func (st *Store) List() ([]*AgentSession, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}
	var out []*AgentSession
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		s, err := st.Get(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (st *Store) path(id string) string {
	return filepath.Join(st.dir, id+".json")
}
