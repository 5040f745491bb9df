package engine

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// FilePersister stores the whole snapshot as one JSON document. Every Save
// rewrites the file via a temporary file and an atomic rename, so a crash
// leaves either the old state or the new one, never a torn write.
type FilePersister struct {
	path string
}

// NewFilePersister ensures the parent directory exists and returns a
// persister for the given file.
func NewFilePersister(path string) (*FilePersister, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return &FilePersister{path: path}, nil
}

// Load reads the snapshot from disk. A missing or malformed file is treated
// as empty state so that startup can re-seed instead of failing.
func (p *FilePersister) Load() (*Snapshot, error) {
	content, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, err
	}
	var state Snapshot
	if err := json.Unmarshal(content, &state); err != nil {
		log.Printf("Warning: could not parse %s, starting with empty state: %v", p.path, err)
		return &Snapshot{}, nil
	}
	return &state, nil
}

// Save writes the full snapshot to disk.
func (p *FilePersister) Save(state *Snapshot) error {
	bytes, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tempPath := p.path + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, p.path)
}

// Close is a no-op; the file is not held open between writes.
func (p *FilePersister) Close() error { return nil }
