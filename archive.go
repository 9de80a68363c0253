package brainstorm

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Artifact Archive — pluggable record of delivered drafts
// ──────────────────────────────────────────────

// ArchiveStore is the storage backend for the artifact archive.
// Data is organized by namespace ("{agent_id}:{user_id}") and key.
type ArchiveStore interface {
	// KV operations
	Get(namespace, key string) (string, error)
	Set(namespace, key, value string) error
	Delete(namespace, key string) error

	// List operations (ordered history)
	Append(namespace, key, value string) error
	GetList(namespace, key string, limit, offset int) ([]string, error)
	ListLength(namespace, key string) (int, error)
}

// InMemoryArchiveStore is a thread-safe in-memory ArchiveStore for
// development and tests. Data is lost on restart.
type InMemoryArchiveStore struct {
	mu    sync.RWMutex
	kv    map[string]map[string]string
	lists map[string]map[string][]string
}

// NewInMemoryArchiveStore creates a new in-memory store.
func NewInMemoryArchiveStore() *InMemoryArchiveStore {
	return &InMemoryArchiveStore{
		kv:    make(map[string]map[string]string),
		lists: make(map[string]map[string][]string),
	}
}

func (s *InMemoryArchiveStore) Get(namespace, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ns, ok := s.kv[namespace]; ok {
		return ns[key], nil
	}
	return "", nil
}

func (s *InMemoryArchiveStore) Set(namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv[namespace] == nil {
		s.kv[namespace] = make(map[string]string)
	}
	s.kv[namespace][key] = value
	return nil
}

func (s *InMemoryArchiveStore) Delete(namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.kv[namespace]; ok {
		delete(ns, key)
	}
	return nil
}

func (s *InMemoryArchiveStore) Append(namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lists[namespace] == nil {
		s.lists[namespace] = make(map[string][]string)
	}
	s.lists[namespace][key] = append(s.lists[namespace][key], value)
	return nil
}

func (s *InMemoryArchiveStore) GetList(namespace, key string, limit, offset int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []string
	if ns, ok := s.lists[namespace]; ok {
		items = ns[key]
	}
	if offset >= len(items) {
		return []string{}, nil
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out, nil
}

func (s *InMemoryArchiveStore) ListLength(namespace, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ns, ok := s.lists[namespace]; ok {
		return len(ns[key]), nil
	}
	return 0, nil
}

// ──────────────────────────────────────────────
// ArtifactArchive
// ──────────────────────────────────────────────

// ArchivedArtifact is one recorded draft.
type ArchivedArtifact struct {
	Idea      string `json:"idea"`
	Artifact  string `json:"artifact"`
	CreatedAt string `json:"created_at"` // RFC3339
}

const (
	archiveLatestKey  = "latest_artifact"
	archiveHistoryKey = "artifacts"
)

// ArtifactArchive records delivered artifacts per user, layered on top of
// the session engine — the engine itself never depends on it surviving.
type ArtifactArchive struct {
	agentID string
	store   ArchiveStore
}

// NewArtifactArchive creates an archive. A nil store uses the in-memory one.
func NewArtifactArchive(agentID string, store ArchiveStore) *ArtifactArchive {
	if store == nil {
		store = NewInMemoryArchiveStore()
	}
	return &ArtifactArchive{agentID: agentID, store: store}
}

func (a *ArtifactArchive) namespace(userID string) string {
	return fmt.Sprintf("%s:%s", a.agentID, userID)
}

// Record stores the artifact as both the latest entry and a history item.
func (a *ArtifactArchive) Record(userID, idea, artifact string) error {
	ns := a.namespace(userID)
	entry := ArchivedArtifact{
		Idea:      idea,
		Artifact:  artifact,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := a.store.Set(ns, archiveLatestKey, string(data)); err != nil {
		return err
	}
	return a.store.Append(ns, archiveHistoryKey, string(data))
}

// Latest returns the most recently recorded artifact, or nil if none exists.
func (a *ArtifactArchive) Latest(userID string) (*ArchivedArtifact, error) {
	raw, err := a.store.Get(a.namespace(userID), archiveLatestKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var entry ArchivedArtifact
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// History returns up to limit recorded artifacts, oldest first.
// limit <= 0 returns everything.
func (a *ArtifactArchive) History(userID string, limit int) ([]ArchivedArtifact, error) {
	raw, err := a.store.GetList(a.namespace(userID), archiveHistoryKey, limit, 0)
	if err != nil {
		return nil, err
	}
	out := make([]ArchivedArtifact, 0, len(raw))
	for _, r := range raw {
		var entry ArchivedArtifact
		if json.Unmarshal([]byte(r), &entry) == nil {
			out = append(out, entry)
		}
	}
	return out, nil
}
