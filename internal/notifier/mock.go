package notifier

import "sync"

// MockNotifier records notices for assertions in tests.
type MockNotifier struct {
	mu sync.Mutex

	IntegrityWarningCalls []struct {
		SessionID, MatchID, Detail string
	}
	ManualRerunRequiredCalls []struct {
		SessionID, MatchID, Reason string
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) IntegrityWarning(sessionID, matchID, detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IntegrityWarningCalls = append(m.IntegrityWarningCalls, struct {
		SessionID, MatchID, Detail string
	}{sessionID, matchID, detail})
}

func (m *MockNotifier) ManualRerunRequired(sessionID, matchID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ManualRerunRequiredCalls = append(m.ManualRerunRequiredCalls, struct {
		SessionID, MatchID, Reason string
	}{sessionID, matchID, reason})
}
