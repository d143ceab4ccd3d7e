// internal/credentials/file.go
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileBackend persists secrets as a JSON map on disk, mode 0600, written via
// rename so a crash never leaves a truncated store. It stands in for the OS
// credential facility on platforms where none is wired.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

// NewFileBackend returns a backend rooted at path. An empty path defaults to
// $HOME/.deskhand/credentials.json.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("credentials: resolve home dir: %w", err)
		}
		path = filepath.Join(home, ".deskhand", "credentials.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("credentials: create store dir: %w", err)
	}
	return &FileBackend{path: path}, nil
}

func (b *FileBackend) Store(target, secret string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.read()
	if err != nil {
		return err
	}
	entries[target] = secret
	return b.write(entries)
}

func (b *FileBackend) Load(target string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.read()
	if err != nil {
		return "", err
	}
	return entries[target], nil
}

func (b *FileBackend) Delete(target string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.read()
	if err != nil {
		return false, err
	}
	if _, existed := entries[target]; !existed {
		return false, nil
	}
	delete(entries, target)
	return true, b.write(entries)
}

func (b *FileBackend) Has(target string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.read()
	if err != nil {
		return false
	}
	_, ok := entries[target]
	return ok
}

func (b *FileBackend) read() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("credentials: read store: %w", err)
	}
	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("credentials: corrupt store: %w", err)
	}
	return entries, nil
}

func (b *FileBackend) write(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("credentials: marshal store: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("credentials: write store: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("credentials: replace store: %w", err)
	}
	return nil
}
