package storage

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore provides thread-safe JSON file-based persistence, one file per
// document key.
type JSONStore struct {
	mu      sync.RWMutex
	dataDir string
}

// NewJSONStore creates a new JSON store rooted at dataDir
func NewJSONStore(dataDir string) (*JSONStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	return &JSONStore{dataDir: dataDir}, nil
}

func (s *JSONStore) path(key string) string {
	return filepath.Join(s.dataDir, key+".json")
}

// Load reads the document for key into the provided value. A missing or
// unparseable file leaves the value untouched.
func (s *JSONStore) Load(_ context.Context, key string, into interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet, not an error
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(into); err != nil {
		log.Printf("[store] corrupt document %q, treating as absent: %v", key, err)
	}
	return nil
}

// Save writes the whole document for key
func (s *JSONStore) Save(_ context.Context, key string, data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to temp file first, then rename (atomic operation)
	path := s.path(key)
	tempFile := path + ".tmp"
	file, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		file.Close()
		os.Remove(tempFile)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	// Atomic rename
	return os.Rename(tempFile, path)
}
