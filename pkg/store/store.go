// Package store is the concurrency-safe in-memory registry backing the
// HTTP mock pipeline: endpoints, their scenario counters, and mutation
// history, with atomic file persistence of endpoints. See spec.md §4.2
// and §5.
//
// The store is the single authority on shared endpoint state: every
// external component receives cloned snapshots, never internal pointers,
// and every mutation goes through one of the methods below under a
// single reader-writer lock (single-writer discipline).
package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/getmockd/mockd/internal/id"
	"github.com/getmockd/mockd/internal/pathmatch"
	"github.com/getmockd/mockd/pkg/logging"
	"github.com/getmockd/mockd/pkg/mockendpoint"
	"github.com/getmockd/mockd/pkg/mockerr"
)

// Store holds the endpoint registry, per-endpoint scenario counters, and
// mutation history. All fields are guarded by mu.
type Store struct {
	mu sync.RWMutex

	endpoints map[string]*mockendpoint.Endpoint
	order     []string // insertion order of endpoint IDs

	scenarioCounters map[string]*scenarioCounter

	history      map[string][]*HistoryEntry // endpointID -> entries, oldest first
	historyOrder []*HistoryEntry            // global, oldest first, for GET /history

	persist *persister
	log     *slog.Logger

	envSettings  EnvironmentSettings
	environments []string

	globalAuth mockendpoint.GlobalAuthSettings
}

type scenarioCounter struct {
	count      int64
	lastAccess time.Time
}

// Options configures a new Store.
type Options struct {
	// DataDir, if non-empty, enables file persistence under it
	// (endpoints.json / .backup / .tmp). Empty means memory-only.
	DataDir string

	// Logger receives best-effort diagnostics (failed persistence
	// writes never fail the calling mutation).
	Logger *slog.Logger
}

// New creates a Store. If opts.DataDir is set, it attempts to load an
// existing snapshot before returning.
func New(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Store{
		endpoints:        make(map[string]*mockendpoint.Endpoint),
		scenarioCounters: make(map[string]*scenarioCounter),
		history:          make(map[string][]*HistoryEntry),
		log:              logger,
		persist:          newPersister(opts.DataDir, logger),
		envSettings:      DefaultEnvironmentSettings(),
		environments:     []string{"default"},
	}
	endpoints, err := s.persist.load()
	if err != nil {
		return nil, err
	}
	for _, ep := range endpoints {
		s.endpoints[ep.ID] = ep
		s.order = append(s.order, ep.ID)
	}
	return s, nil
}

// CreateEndpoint assigns a new ID and timestamps, stores the endpoint,
// and schedules a snapshot write.
func (s *Store) CreateEndpoint(ep *mockendpoint.Endpoint) (*mockendpoint.Endpoint, error) {
	if ep == nil {
		return nil, mockerr.ErrValidation
	}
	clone := ep.Clone()
	if clone.ID == "" {
		clone.ID = id.UUID()
	}
	if clone.Status == "" {
		clone.Status = mockendpoint.StatusActive
	}
	if err := clone.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	clone.CreatedAt = now
	clone.UpdatedAt = now

	s.mu.Lock()
	if _, exists := s.endpoints[clone.ID]; exists {
		s.mu.Unlock()
		return nil, mockerr.ErrConflict
	}
	s.endpoints[clone.ID] = clone
	s.order = append(s.order, clone.ID)
	s.appendHistoryLocked(clone, "create")
	snapshot := s.snapshotEndpointsLocked()
	s.mu.Unlock()

	s.persist.save(snapshot)
	return clone.Clone(), nil
}

// GetEndpoint returns a clone of the endpoint with the given ID.
func (s *Store) GetEndpoint(id string) (*mockendpoint.Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ep, ok := s.endpoints[id]
	if !ok {
		return nil, mockerr.ErrNotFound
	}
	return ep.Clone(), nil
}

// GetAllEndpoints returns clones of every endpoint in insertion order.
func (s *Store) GetAllEndpoints() []*mockendpoint.Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*mockendpoint.Endpoint, 0, len(s.order))
	for _, eid := range s.order {
		if ep, ok := s.endpoints[eid]; ok {
			out = append(out, ep.Clone())
		}
	}
	return out
}

// UpdateEndpoint replaces the endpoint with the given ID, preserving its
// ID and CreatedAt, bumping UpdatedAt, and appending a history entry.
func (s *Store) UpdateEndpoint(eid string, updated *mockendpoint.Endpoint) (*mockendpoint.Endpoint, error) {
	if updated == nil {
		return nil, mockerr.ErrValidation
	}
	clone := updated.Clone()
	clone.ID = eid
	if err := clone.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	existing, ok := s.endpoints[eid]
	if !ok {
		s.mu.Unlock()
		return nil, mockerr.ErrNotFound
	}
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = time.Now().UTC()
	s.endpoints[eid] = clone
	s.appendHistoryLocked(clone, "update")
	snapshot := s.snapshotEndpointsLocked()
	s.mu.Unlock()

	s.persist.save(snapshot)
	return clone.Clone(), nil
}

// DeleteEndpoint removes the endpoint and its scenario counter.
func (s *Store) DeleteEndpoint(eid string) error {
	s.mu.Lock()
	if _, ok := s.endpoints[eid]; !ok {
		s.mu.Unlock()
		return mockerr.ErrNotFound
	}
	delete(s.endpoints, eid)
	delete(s.scenarioCounters, eid)
	for i, id := range s.order {
		if id == eid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	snapshot := s.snapshotEndpointsLocked()
	s.mu.Unlock()

	s.persist.save(snapshot)
	return nil
}

// FindEndpointByPath runs the path matcher (internal/pathmatch) over all
// active endpoints of the given method, in registration order. See
// spec.md §4.1.
func (s *Store) FindEndpointByPath(method, path string) (*mockendpoint.Endpoint, map[string]string, bool) {
	s.mu.RLock()
	candidates := make([]pathmatch.Candidate, 0, len(s.order))
	for _, eid := range s.order {
		ep, ok := s.endpoints[eid]
		if !ok {
			continue
		}
		candidates = append(candidates, pathmatch.Candidate{
			Endpoint: ep,
			Pattern:  pathmatch.Compile(ep.Path),
		})
	}
	s.mu.RUnlock()

	ep, params, ok := pathmatch.FindEndpoint(candidates, method, path)
	if !ok {
		return nil, nil, false
	}
	return ep.Clone(), params, true
}

// AvailableEndpoints lists "METHOD path" for every active endpoint, used
// to populate the 404 response body.
func (s *Store) AvailableEndpoints() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.order))
	for _, eid := range s.order {
		ep, ok := s.endpoints[eid]
		if !ok || !ep.Active() {
			continue
		}
		out = append(out, string(ep.Method)+" "+ep.Path)
	}
	sort.Strings(out)
	return out
}

func (s *Store) snapshotEndpointsLocked() []*mockendpoint.Endpoint {
	out := make([]*mockendpoint.Endpoint, 0, len(s.order))
	for _, eid := range s.order {
		if ep, ok := s.endpoints[eid]; ok {
			out = append(out, ep)
		}
	}
	return out
}
