package store

import "time"

// ScenarioCounterSnapshot is a read-only view of one endpoint's scenario
// counter, for GET /scenario/counters.
type ScenarioCounterSnapshot struct {
	EndpointID string    `json:"endpointId"`
	Count      int64     `json:"count"`
	LastAccess time.Time `json:"lastAccess"`
}

// ReadAndIncrementScenarioCounter applies the auto-reset rule (spec.md
// §4.2: if resetAfterSeconds > 0 and now-lastAccess >= resetAfterSeconds,
// the counter resets to zero first), then returns the counter value as
// observed by *this* request and increments it for the next one.
//
// This is the read-then-increment the scenario selector needs: per
// spec.md §9's open question, the n-th request must observe counter_n
// strictly less than counter_{n+1}, so the read and the increment happen
// atomically under the store's lock rather than as two separate calls.
func (s *Store) ReadAndIncrementScenarioCounter(endpointID string, resetAfterSeconds int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.scenarioCounters[endpointID]
	if !ok {
		c = &scenarioCounter{}
		s.scenarioCounters[endpointID] = c
	}

	now := time.Now()
	if resetAfterSeconds > 0 && !c.lastAccess.IsZero() {
		if now.Sub(c.lastAccess) >= time.Duration(resetAfterSeconds)*time.Second {
			c.count = 0
		}
	}

	observed := c.count
	c.count++
	c.lastAccess = now
	return observed
}

// ResetScenarioCounter zeroes the named endpoint's counter.
func (s *Store) ResetScenarioCounter(endpointID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scenarioCounters, endpointID)
}

// ResetAllScenarioCounters zeroes every endpoint's counter.
func (s *Store) ResetAllScenarioCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarioCounters = make(map[string]*scenarioCounter)
}

// ScenarioCounters returns a snapshot of every tracked counter.
func (s *Store) ScenarioCounters() []ScenarioCounterSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ScenarioCounterSnapshot, 0, len(s.scenarioCounters))
	for eid, c := range s.scenarioCounters {
		out = append(out, ScenarioCounterSnapshot{EndpointID: eid, Count: c.count, LastAccess: c.lastAccess})
	}
	return out
}
