package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/set-night/finmind/internal/domain"
)

// FileStore keeps all keys in a single JSON document. Every write rewrites the
// file through a temp file and rename, so a crash never leaves it half written.
type FileStore struct {
	mu   sync.RWMutex
	path string
	snap fileSnapshot
}

type fileSnapshot struct {
	UpdatedAt time.Time         `json:"updated_at"`
	Values    map[string]string `json:"values"`
}

func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	fs := &FileStore{path: path, snap: fileSnapshot{Values: make(map[string]string)}}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (f *FileStore) load() error {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	var snap fileSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("parse state file: %w", err)
	}
	if snap.Values == nil {
		snap.Values = make(map[string]string)
	}
	f.snap = snap
	return nil
}

func (f *FileStore) Get(_ context.Context, key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.snap.Values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.snap.Values[key]
	f.snap.Values[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.snap.Values[key] = prev
		} else {
			delete(f.snap.Values, key)
		}
		return err
	}
	return nil
}

func (f *FileStore) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.snap.Values[key]
	if !had {
		return nil
	}
	delete(f.snap.Values, key)
	if err := f.flush(); err != nil {
		f.snap.Values[key] = prev
		return err
	}
	return nil
}

// flush must be called with f.mu held.
func (f *FileStore) flush() error {
	f.snap.UpdatedAt = time.Now().UTC()
	tmp := f.path + ".tmp"

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f.snap); err != nil {
		out.Close()
		return fmt.Errorf("encode state: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
