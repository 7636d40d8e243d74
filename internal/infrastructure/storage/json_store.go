package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"BrainCandy/internal/ports"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// JSONFileStore keeps one indented JSON file per key inside a directory.
type JSONFileStore struct {
	dir string
}

var _ ports.KeyValueStore = (*JSONFileStore)(nil)

// NewJSONFileStore creates dir when missing.
func NewJSONFileStore(dir string) (*JSONFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &JSONFileStore{dir: dir}, nil
}

// Load decodes the file for key into dst; it reports false when the file does not exist.
func (s *JSONFileStore) Load(_ context.Context, key string, dst any) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// Save writes value to a temporary file and renames it over the previous version.
func (s *JSONFileStore) Save(_ context.Context, key string, value any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Close is a no-op; files are not held open.
func (s *JSONFileStore) Close() error {
	return nil
}

func (s *JSONFileStore) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid state key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
