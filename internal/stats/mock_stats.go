package stats

import "sync"

// MockStats is a StatsProvider for tests that records increments in memory.
type MockStats struct {
	mu     sync.Mutex
	Counts map[string]int
}

func NewMockStats() *MockStats {
	return &MockStats{Counts: make(map[string]int)}
}

func (m *MockStats) Incr(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counts[name]++
}

func (m *MockStats) Decr(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counts[name]--
}

func (m *MockStats) RegisterMetric(name string) {}

func (m *MockStats) Run() {}
