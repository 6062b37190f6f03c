package websocket

import (
	"sync"
	"time"

	"github.com/getmockd/mockd/internal/id"
	"github.com/getmockd/mockd/pkg/mockerr"
)

// Store is the concurrency-safe registry of WebSocket endpoints. It
// mirrors pkg/store's single-writer discipline, without the HTTP
// endpoint's file persistence — spec.md names only endpoints.json as the
// required on-disk artifact.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*Endpoint
	order []string
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

func (s *Store) Get(id string) (*Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ep, ok := s.byID[id]
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

func cloneEndpoint(ep *Endpoint) *Endpoint {
	if ep == nil {
		return nil
	}
	clone := *ep
	clone.MessagePatterns = append([]MessagePattern(nil), ep.MessagePatterns...)
	clone.ScheduledMessages = append([]ScheduledMessage(nil), ep.ScheduledMessages...)
	if ep.OnConnectMessage != nil {
		msg := *ep.OnConnectMessage
		clone.OnConnectMessage = &msg
	}
	return &clone
}
