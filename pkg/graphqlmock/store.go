package graphqlmock

import (
	"sync"
	"time"

	"github.com/getmockd/mockd/internal/id"
	"github.com/getmockd/mockd/pkg/mockerr"
)

const logCap = 1000

// Store is the concurrency-safe registry of GraphQL endpoints plus the
// capped, newest-first request log for the admin /logs surface. See
// spec.md §4.10.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*Endpoint
	order []string

	logs []LogEntry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*Endpoint)}
}

func (s *Store) Create(ep *Endpoint) *Endpoint {
	clone := cloneEndpoint(ep)
	if clone.ID == "" {
		clone.ID = id.UUID()
	}
	if clone.Status == "" {
		clone.Status = "active"
	}
	now := time.Now().UTC()
	clone.CreatedAt, clone.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[clone.ID] = clone
	s.order = append(s.order, clone.ID)
	return cloneEndpoint(clone)
}

func (s *Store) Get(eid string) (*Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ep, ok := s.byID[eid]
	if !ok {
		return nil, mockerr.ErrNotFound
	}
	return cloneEndpoint(ep), nil
}

func (s *Store) List() []*Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Endpoint, 0, len(s.order))
	for _, eid := range s.order {
		out = append(out, cloneEndpoint(s.byID[eid]))
	}
	return out
}

// FindByPath returns the first active endpoint whose Path equals path.
func (s *Store) FindByPath(path string) (*Endpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, eid := range s.order {
		ep := s.byID[eid]
		if ep.Path == path && ep.Active() {
			return cloneEndpoint(ep), true
		}
	}
	return nil, false
}

func (s *Store) Update(eid string, updated *Endpoint) (*Endpoint, error) {
	clone := cloneEndpoint(updated)
	clone.ID = eid

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[eid]
	if !ok {
		return nil, mockerr.ErrNotFound
	}
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = time.Now().UTC()
	s.byID[eid] = clone
	return cloneEndpoint(clone), nil
}

func (s *Store) Delete(eid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[eid]; !ok {
		return mockerr.ErrNotFound
	}
	delete(s.byID, eid)
	for i, v := range s.order {
		if v == eid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// AppendLog records entry, evicting the oldest entry once logCap is
// exceeded.
func (s *Store) AppendLog(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > logCap {
		s.logs = s.logs[len(s.logs)-logCap:]
	}
}

// Logs returns up to limit entries, newest-first. limit<=0 means all.
func (s *Store) Logs(limit int) []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LogEntry, len(s.logs))
	for i, e := range s.logs {
		out[len(s.logs)-1-i] = e
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// ClearLogs empties the log buffer.
func (s *Store) ClearLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = nil
}

func cloneEndpoint(ep *Endpoint) *Endpoint {
	if ep == nil {
		return nil
	}
	clone := *ep
	clone.Resolvers = append([]Resolver(nil), ep.Resolvers...)
	if ep.DefaultResponse != nil {
		resp := *ep.DefaultResponse
		clone.DefaultResponse = &resp
	}
	return &clone
}
