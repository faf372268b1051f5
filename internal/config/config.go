// Package config reads optional run defaults from a TOML file.
//
// The file lives at ~/.discussion-export/config.toml and supplies defaults
// for values the user would otherwise repeat on every invocation, such as
// download parallelism. Command-line flags always win over file values.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Keys recognized in the config file.
const (
	KeyAssetsDir   = "assets.dir"
	KeyParallelism = "assets.parallelism"
	KeySkipAssets  = "assets.skip"
	KeyHTTPTimeout = "http.timeout_seconds"
	KeyVerbose     = "verbose"
)

// Store is a file-backed TOML configuration store. Nested tables are
// flattened into dot-notation keys.
type Store struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewStore creates a store rooted at configDir. If configDir is empty it
// defaults to ~/.discussion-export. A missing config file is not an error;
// the store simply starts empty.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".discussion-export")
	}

	s := &Store{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the TOML file, replacing the current in-memory values.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}
	if loaded == nil {
		loaded = make(map[string]any)
	}

	s.data = flattenMap(loaded, "")
	return nil
}

// Get retrieves a value by dot-notation key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string value, or fallback when absent or mistyped.
func (s *Store) GetString(key, fallback string) string {
	val, ok := s.Get(key)
	if !ok {
		return fallback
	}
	str, ok := val.(string)
	if !ok {
		return fallback
	}
	return str
}

// GetInt retrieves an integer value, or fallback when absent or mistyped.
func (s *Store) GetInt(key string, fallback int) int {
	val, ok := s.Get(key)
	if !ok {
		return fallback
	}

	// TOML integers are parsed as int64
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

// GetBool retrieves a boolean value, or fallback when absent or mistyped.
func (s *Store) GetBool(key string, fallback bool) bool {
	val, ok := s.Get(key)
	if !ok {
		return fallback
	}
	b, ok := val.(bool)
	if !ok {
		return fallback
	}
	return b
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.filePath
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}
