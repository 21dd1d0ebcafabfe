package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type memoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (s *memoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *memoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *memoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MemoryContext keeps every namespace in process memory.
type MemoryContext struct {
	mu     sync.Mutex
	stores map[string]*memoryStore
}

func NewMemoryContext() *MemoryContext {
	return &MemoryContext{stores: make(map[string]*memoryStore)}
}

// Store returns the namespace's store, creating it on first use. The same name
// always yields the same store within this context and never another context's.
func (c *MemoryContext) Store(name string, _ Mode) Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stores[name]
	if !ok {
		s = newMemoryStore()
		c.stores[name] = s
	}
	return s
}

// FileContext persists each namespace as a YAML document named <namespace>.yaml under Dir.
type FileContext struct {
	Dir string

	mu     sync.Mutex
	stores map[string]*fileStore
}

func NewFileContext(dir string) *FileContext {
	return &FileContext{Dir: dir, stores: make(map[string]*fileStore)}
}

func (c *FileContext) Store(name string, _ Mode) Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stores[name]
	if !ok {
		s = &fileStore{path: filepath.Join(c.Dir, sanitizeNamespace(name)+".yaml")}
		c.stores[name] = s
	}
	return s
}

func sanitizeNamespace(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

type fileStore struct {
	mu     sync.Mutex
	path   string
	loaded bool
	values map[string]string
}

func (s *fileStore) load() error {
	if s.loaded {
		return nil
	}
	s.values = make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read store %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return fmt.Errorf("failed to parse store %s: %w", s.path, err)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.loaded = true
	return nil
}

func (s *fileStore) flush() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to encode store %s: %w", s.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write store %s: %w", s.path, err)
	}
	return os.Rename(tmp, s.path)
}

// Get treats an unreadable file as an empty namespace.
func (s *fileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return "", false
	}
	v, ok := s.values[key]
	return v, ok
}

func (s *fileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.values[key] = value
	return s.flush()
}

func (s *fileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}

func (s *fileStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
