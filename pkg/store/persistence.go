package store

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/getmockd/mockd/pkg/mockendpoint"
)

// snapshotVersion is bumped whenever the on-disk shape changes.
const snapshotVersion = 1

// snapshot is the JSON document written to endpoints.json. See spec.md
// §4.2.
type snapshot struct {
	Version   int                       `json:"version"`
	SavedAt   time.Time                 `json:"savedAt"`
	Count     int                       `json:"count"`
	Endpoints []*mockendpoint.Endpoint  `json:"endpoints"`
}

// persister implements the file / file.backup / file.tmp write-rename
// invariant from spec.md §4.2 and §5. A zero-value dir makes every
// operation a no-op, giving the store a memory-only mode without
// scattering nil checks through store.go.
type persister struct {
	dir  string
	path string
	log  *slog.Logger

	mu sync.Mutex // serialises save
}

func newPersister(dir string, logger *slog.Logger) *persister {
	p := &persister{dir: dir, log: logger}
	if dir != "" {
		p.path = filepath.Join(dir, "endpoints.json")
	}
	return p
}

func (p *persister) backupPath() string { return p.path + ".backup" }
func (p *persister) tmpPath() string    { return p.path + ".tmp" }

// load parses the endpoints file; on parse error it falls back to the
// backup; if both fail, it starts empty rather than erroring the whole
// store, since a corrupt snapshot should not prevent the server from
// starting.
func (p *persister) load() ([]*mockendpoint.Endpoint, error) {
	if p.path == "" {
		return nil, nil
	}
	if snap, err := p.parseFile(p.path); err == nil {
		return snap.Endpoints, nil
	}
	if snap, err := p.parseFile(p.backupPath()); err == nil {
		p.log.Warn("loaded endpoints from backup snapshot", "path", p.backupPath())
		return snap.Endpoints, nil
	}
	p.log.Warn("no valid endpoints snapshot found, starting empty", "path", p.path)
	return nil, nil
}

func (p *persister) parseFile(path string) (*snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// save writes a new snapshot: serialise to <file>.tmp, copy the existing
// <file> to <file>.backup, then rename <file>.tmp over <file>. Failures
// are logged, never returned to the caller — persistence is best-effort
// and must not fail the mutating request.
func (p *persister) save(endpoints []*mockendpoint.Endpoint) {
	if p.path == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.saveErr(endpoints); err != nil {
		p.log.Error("failed to persist endpoints snapshot", "error", err, "path", p.path)
	}
}

func (p *persister) saveErr(endpoints []*mockendpoint.Endpoint) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return err
	}

	snap := snapshot{
		Version:   snapshotVersion,
		SavedAt:   time.Now().UTC(),
		Count:     len(endpoints),
		Endpoints: endpoints,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(p.tmpPath(), data, 0o644); err != nil {
		return err
	}

	if _, err := os.Stat(p.path); err == nil {
		if err := copyFile(p.path, p.backupPath()); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return os.Rename(p.tmpPath(), p.path)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
