package memory

import (
	"maps"
	"strings"
	"sync"

	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// MemoryConfigPath is reported as the path of an in-memory config.
const MemoryConfigPath = ":memory:"

// ConfigStore keeps configuration in process memory only. It backs
// --no-config runs, where settings come from defaults and the environment,
// and it stands in for the file store in tests.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an in-memory config store seeded with values.
// Keys use the dotted form of the file store, such as "chunking.size".
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, m := range seed {
		maps.Copy(s.values, m)
	}
	return s
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString returns the value as a string, or "" when absent or not a string.
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt returns an int or int64 value, or 0.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	if n, ok := asInt64(v); ok {
		return int(n)
	}
	return 0
}

// GetFloat returns a numeric value widened to float64, or 0.
func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	if f, ok := v.(float64); ok {
		return f
	}
	if n, ok := asInt64(v); ok {
		return float64(n)
	}
	return 0
}

// GetBool returns the value as a bool, or false.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// GetTable returns the values under key with the prefix stripped, or nil.
func (s *ConfigStore) GetTable(key string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := key + "."
	var table map[string]any
	for k, v := range s.values {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}
		if table == nil {
			table = make(map[string]any)
		}
		table[rest] = v
	}
	return table
}

// Set stores a value. It never fails.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Save does nothing: values live only as long as the process.
func (s *ConfigStore) Save() error {
	return nil
}

// Load does nothing: there is no backing file to reread.
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns MemoryConfigPath.
func (s *ConfigStore) Path() string {
	return MemoryConfigPath
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
