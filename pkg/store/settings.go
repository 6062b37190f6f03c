package store

import "github.com/getmockd/mockd/pkg/mockendpoint"

// GetGlobalAuthSettings returns the process-wide auth fallback (§4.3
// step 2's "global settings").
func (s *Store) GetGlobalAuthSettings() mockendpoint.GlobalAuthSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.globalAuth
}

// UpdateGlobalAuthSettings replaces the process-wide auth fallback.
func (s *Store) UpdateGlobalAuthSettings(settings mockendpoint.GlobalAuthSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalAuth = settings
}

// ClearGlobalAuthSettings resets the fallback to disabled/empty.
func (s *Store) ClearGlobalAuthSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalAuth = mockendpoint.GlobalAuthSettings{}
}
