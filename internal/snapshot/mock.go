package snapshot

import (
	"sync"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
)

// MockStore is a mock implementation of the SnapshotStore interface for
// testing.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	WriteFunc           func(entry Entry) error
	GetFunc             func(matchID, playerID string) (rating.State, bool, error)
	BeforeFunc          func(playerID, matchID string, mode rating.Mode) (rating.State, bool, error)
	SessionBaselineFunc func(playerID, sessionID string, mode rating.Mode) (rating.State, bool, error)
	InvalidateFromFunc  func(sessionID string, mode rating.Mode, round, slot int) (int64, error)
	CountForSessionFunc func(sessionID string) (int64, error)
	PersistReplayFunc   func(mode rating.Mode, entries []Entry, finals map[string]rating.State) error

	// Call records
	WriteCalls          []Entry
	InvalidateFromCalls []struct {
		SessionID   string
		Mode        rating.Mode
		Round, Slot int
	}
	PersistReplayCalls []struct {
		Mode    rating.Mode
		Entries []Entry
		Finals  map[string]rating.State
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Write(entry Entry) error {
	m.mu.Lock()
	m.WriteCalls = append(m.WriteCalls, entry)
	m.mu.Unlock()
	if m.WriteFunc != nil {
		return m.WriteFunc(entry)
	}
	return nil
}

func (m *MockStore) Get(matchID, playerID string) (rating.State, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(matchID, playerID)
	}
	return rating.State{}, false, nil
}

func (m *MockStore) Before(playerID, matchID string, mode rating.Mode) (rating.State, bool, error) {
	if m.BeforeFunc != nil {
		return m.BeforeFunc(playerID, matchID, mode)
	}
	return rating.State{}, false, nil
}

func (m *MockStore) SessionBaseline(playerID, sessionID string, mode rating.Mode) (rating.State, bool, error) {
	if m.SessionBaselineFunc != nil {
		return m.SessionBaselineFunc(playerID, sessionID, mode)
	}
	return rating.State{}, false, nil
}

func (m *MockStore) InvalidateFrom(sessionID string, mode rating.Mode, round, slot int) (int64, error) {
	m.mu.Lock()
	m.InvalidateFromCalls = append(m.InvalidateFromCalls, struct {
		SessionID   string
		Mode        rating.Mode
		Round, Slot int
	}{sessionID, mode, round, slot})
	m.mu.Unlock()
	if m.InvalidateFromFunc != nil {
		return m.InvalidateFromFunc(sessionID, mode, round, slot)
	}
	return 0, nil
}

func (m *MockStore) CountForSession(sessionID string) (int64, error) {
	if m.CountForSessionFunc != nil {
		return m.CountForSessionFunc(sessionID)
	}
	return 0, nil
}

func (m *MockStore) PersistReplay(mode rating.Mode, entries []Entry, finals map[string]rating.State) error {
	m.mu.Lock()
	m.PersistReplayCalls = append(m.PersistReplayCalls, struct {
		Mode    rating.Mode
		Entries []Entry
		Finals  map[string]rating.State
	}{mode, entries, finals})
	m.mu.Unlock()
	if m.PersistReplayFunc != nil {
		return m.PersistReplayFunc(mode, entries, finals)
	}
	return nil
}
