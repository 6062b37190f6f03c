package store

import (
	"time"

	"github.com/getmockd/mockd/internal/id"
	"github.com/getmockd/mockd/pkg/mockendpoint"
	"github.com/getmockd/mockd/pkg/mockerr"
)

// HistoryEntry is an immutable snapshot of an endpoint taken at mutation
// time, per spec.md §3 (ResponseHistory).
type HistoryEntry struct {
	ID         string                 `json:"id"`
	EndpointID string                 `json:"endpointId"`
	Operation  string                 `json:"operation"` // "create" | "update" | "restore"
	Snapshot   *mockendpoint.Endpoint `json:"snapshot"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// appendHistoryLocked records a snapshot of ep. Caller must hold s.mu.
func (s *Store) appendHistoryLocked(ep *mockendpoint.Endpoint, operation string) {
	entry := &HistoryEntry{
		ID:         id.UUID(),
		EndpointID: ep.ID,
		Operation:  operation,
		Snapshot:   ep.Clone(),
		CreatedAt:  time.Now().UTC(),
	}
	s.history[ep.ID] = append(s.history[ep.ID], entry)
	s.historyOrder = append(s.historyOrder, entry)
}

// EndpointHistory returns the history entries for one endpoint, oldest
// first.
func (s *Store) EndpointHistory(endpointID string) []*HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[endpointID]
	out := make([]*HistoryEntry, len(entries))
	copy(out, entries)
	return out
}

// AllHistory returns up to limit history entries across all endpoints,
// newest first. limit <= 0 means unbounded.
func (s *Store) AllHistory(limit int) []*HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*HistoryEntry, 0, len(s.historyOrder))
	for i := len(s.historyOrder) - 1; i >= 0; i-- {
		out = append(out, s.historyOrder[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// RestoreHistory rewrites the named history entry's endpoint to its
// snapshot content and bumps UpdatedAt.
func (s *Store) RestoreHistory(historyID string) (*mockendpoint.Endpoint, error) {
	s.mu.Lock()
	var found *HistoryEntry
	for _, e := range s.historyOrder {
		if e.ID == historyID {
			found = e
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return nil, mockerr.ErrNotFound
	}
	if _, ok := s.endpoints[found.EndpointID]; !ok {
		s.mu.Unlock()
		return nil, mockerr.ErrNotFound
	}

	restored := found.Snapshot.Clone()
	restored.UpdatedAt = time.Now().UTC()
	s.endpoints[restored.ID] = restored
	s.appendHistoryLocked(restored, "restore")
	snap := s.snapshotEndpointsLocked()
	s.mu.Unlock()

	s.persist.save(snap)
	return restored.Clone(), nil
}
