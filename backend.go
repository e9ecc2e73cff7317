package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Backend loads and saves the flat key/value property map. The default
// backend installed by Configure writes a single JSON document; alternative
// implementations can redirect persistence for tests or ephemeral stores.
type Backend interface {
	Load() (map[string]string, error)
	Save(values map[string]string) error
}

// fileBackend persists the property map as a pretty-printed JSON object at a
// fixed path, using a temp-file-plus-rename protocol so the target file is
// never observed half written.
type fileBackend struct {
	path string
}

func newFileBackend(path string) *fileBackend {
	return &fileBackend{path: path}
}

// Load reads the persisted document. A missing file yields an empty map; an
// unreadable or corrupt file yields an error the caller is expected to
// recover from.
func (b *fileBackend) Load() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("settings: read %s: %w", b.path, err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", b.path, err)
	}
	return values, nil
}

// Save writes values atomically: marshal, write to a temp sibling, rename
// over the target. A crash mid-save leaves either the old file or the new one
// fully written, never a partial document.
func (b *fileBackend) Save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal properties: %w", err)
	}

	tempPath := b.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("settings: write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, b.path); err != nil {
		return fmt.Errorf("settings: rename %s: %w", tempPath, err)
	}
	return nil
}

// MemoryBackend keeps the property map in memory. It records how many saves
// occurred so tests can assert change-only save semantics.
type MemoryBackend struct {
	mu    sync.Mutex
	data  map[string]string
	saves int
}

// NewMemoryBackend constructs an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[string]string{}}
}

// Load returns a copy of the current contents.
func (b *MemoryBackend) Load() (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.data))
	for key, value := range b.data {
		out[key] = value
	}
	return out, nil
}

// Save replaces the contents with a copy of values.
func (b *MemoryBackend) Save(values map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make(map[string]string, len(values))
	for key, value := range values {
		b.data[key] = value
	}
	b.saves++
	return nil
}

// SaveCount reports how many times Save completed.
func (b *MemoryBackend) SaveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}
