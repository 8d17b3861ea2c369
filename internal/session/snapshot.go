package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// snapshotVersion is bumped when the file layout changes incompatibly.
const snapshotVersion = 1

type snapshot struct {
	Version  int                      `yaml:"version"`
	SavedAt  time.Time                `yaml:"savedAt"`
	Sessions map[string]sessionRecord `yaml:"sessions"`
}

type sessionRecord struct {
	UpdatedAt time.Time `yaml:"updatedAt"`
	State     State     `yaml:"state"`
}

// SaveFile writes every live session to path as YAML. The file is written
// to a temporary name first and renamed, so a crash never leaves a torn file.
func (m *Manager) SaveFile(path string) (int, error) {
	m.mu.RLock()
	snap := snapshot{
		Version:  snapshotVersion,
		SavedAt:  m.now().UTC(),
		Sessions: make(map[string]sessionRecord, len(m.sessions)),
	}
	for id, e := range m.sessions {
		if m.expired(e) {
			continue
		}
		snap.Sessions[id] = sessionRecord{UpdatedAt: e.updatedAt.UTC(), State: e.state}
	}
	m.mu.RUnlock()

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return 0, fmt.Errorf("encode sessions: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return 0, fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("replace snapshot: %w", err)
	}

	return len(snap.Sessions), nil
}

// LoadFile restores sessions saved by SaveFile, skipping any that have
// expired since. A missing file is not an error. Loaded sessions replace
// in-memory sessions with the same id.
func (m *Manager) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return 0, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return 0, fmt.Errorf("snapshot version %d not supported (want %d)", snap.Version, snapshotVersion)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for id, rec := range snap.Sessions {
		e := &entry{
			state:     Reduce(State{}, Restore{State: rec.State}),
			updatedAt: rec.UpdatedAt,
		}
		if m.expired(e) {
			continue
		}
		m.sessions[id] = e
		loaded++
	}
	return loaded, nil
}
