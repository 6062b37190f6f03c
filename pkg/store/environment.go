package store

import "github.com/getmockd/mockd/pkg/mockerr"

// EnvironmentSettings controls how the dispatcher resolves which named
// environment a request belongs to. See spec.md §4.3 step 5.
type EnvironmentSettings struct {
	Enabled    bool   `json:"enabled"`
	HeaderName string `json:"headerName"`
	QueryParam string `json:"queryParam"`
	Default    string `json:"default"`
}

// DefaultEnvironmentSettings matches spec.md's named defaults:
// X-Mock-Environment header, mock_env query parameter, "default" env.
func DefaultEnvironmentSettings() EnvironmentSettings {
	return EnvironmentSettings{
		Enabled:    true,
		HeaderName: "X-Mock-Environment",
		QueryParam: "mock_env",
		Default:    "default",
	}
}

// GetEnvironmentSettings returns the process-wide environment settings.
func (s *Store) GetEnvironmentSettings() EnvironmentSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.envSettings
}

// UpdateEnvironmentSettings replaces the process-wide environment
// settings.
func (s *Store) UpdateEnvironmentSettings(settings EnvironmentSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envSettings = settings
}

// ListEnvironments returns every registered environment name, in
// creation order. The default environment is always present.
func (s *Store) ListEnvironments() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.environments))
	copy(out, s.environments)
	return out
}

// CreateEnvironment registers a new environment name, if not already
// present.
func (s *Store) CreateEnvironment(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.environments {
		if n == name {
			return
		}
	}
	s.environments = append(s.environments, name)
}

// DeleteEnvironment removes a named environment. The configured default
// environment cannot be deleted.
func (s *Store) DeleteEnvironment(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == s.envSettings.Default {
		return mockerr.ErrValidation
	}
	for i, n := range s.environments {
		if n == name {
			s.environments = append(s.environments[:i], s.environments[i+1:]...)
			return nil
		}
	}
	return mockerr.ErrNotFound
}
