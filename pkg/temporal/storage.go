package temporal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FSLogSource serves scenario logs from a directory of CSV files, the layout
// the simulator harness writes.
type FSLogSource struct {
	dir string
}

// NewFSLogSource creates a log source rooted at dir.
func NewFSLogSource(dir string) *FSLogSource {
	return &FSLogSource{dir: dir}
}

// FetchLog reads one log file. Names must stay inside the root directory.
func (s *FSLogSource) FetchLog(_ context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("log name is empty")
	}
	path := filepath.Join(s.dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("log name %q escapes the log directory", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log %s: %w", name, err)
	}
	return data, nil
}

// MockLogSource is an in-memory LogSource for testing
type MockLogSource struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMockLogSource creates a new mock log source
func NewMockLogSource() *MockLogSource {
	return &MockLogSource{files: make(map[string][]byte)}
}

// AddLog registers a log under the given name.
func (m *MockLogSource) AddLog(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
}

func (m *MockLogSource) FetchLog(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("no log named %q", name)
	}
	return data, nil
}

// MockResultSink is an in-memory ResultSink for testing
type MockResultSink struct {
	mu    sync.Mutex
	saved []SuiteResult
}

// NewMockResultSink creates a new mock result sink
func NewMockResultSink() *MockResultSink {
	return &MockResultSink{}
}

func (m *MockResultSink) SaveSuiteResult(_ context.Context, result SuiteResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, result)
	return nil
}

// Saved returns the results recorded so far.
func (m *MockResultSink) Saved() []SuiteResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SuiteResult, len(m.saved))
	copy(out, m.saved)
	return out
}
