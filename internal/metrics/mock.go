package metrics

import "sync"

// MockMetrics is a mock implementation of the Metrics interface for
// testing. It records call counts instead of reporting to Prometheus.
type MockMetrics struct {
	mu sync.Mutex

	RecalcRunsCount        int
	RecalcFailedCount      int
	MatchesReplayedCount   int
	ReplayDurations        []float64
	LockContentionCount    int
	IntegrityWarningsCount int
	StartupTimes           []float64
}

// NewMock creates a new mock instance.
func NewMock() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncRecalcRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecalcRunsCount++
}

func (m *MockMetrics) IncRecalcFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecalcFailedCount++
}

func (m *MockMetrics) AddMatchesReplayed(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesReplayedCount += count
}

func (m *MockMetrics) ObserveReplayDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplayDurations = append(m.ReplayDurations, seconds)
}

func (m *MockMetrics) IncLockContention() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockContentionCount++
}

func (m *MockMetrics) IncIntegrityWarnings() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IntegrityWarningsCount++
}

func (m *MockMetrics) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimes = append(m.StartupTimes, seconds)
}
