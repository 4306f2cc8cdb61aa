package club

import (
	"sync"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
)

// MockStore is a mock implementation of the ClubStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertPlayerFunc            func(playerID, name string) error
	UpsertPlayersFunc           func(players []PlayerInfo) error
	IsKnownPlayerFunc           func(playerID string) bool
	GetAllPlayersFunc           func() ([]PlayerInfo, error)
	UpsertSessionFunc           func(session Session) error
	GetSessionFunc              func(sessionID string) (*Session, error)
	LatestCompletedSessionsFunc func(limit int) ([]Session, error)
	UpsertMatchFunc             func(match *Match) error
	GetMatchFunc                func(matchID string) (*Match, error)
	SessionMatchesFunc          func(sessionID string) ([]*Match, error)
	CompletedMatchesFromFunc    func(sessionID string, mode rating.Mode, round, slot int) ([]*Match, error)
	SetMatchScoreFunc           func(matchID string, scoreA, scoreB int) error
	TryLockSessionFunc          func(sessionID string) error
	UnlockSessionFunc           func(sessionID string, status RecalcStatus) error
	ForceUnlockSessionFunc      func(sessionID string) error
	GetRatingFunc               func(playerID string, mode rating.Mode) (rating.State, bool, error)
	LeaderboardFunc             func(mode rating.Mode) ([]PlayerRating, error)

	// Call records
	TryLockSessionCalls []string
	UnlockSessionCalls  []struct {
		SessionID string
		Status    RecalcStatus
	}
	SetMatchScoreCalls []struct {
		MatchID        string
		ScoreA, ScoreB int
	}
	ForceUnlockSessionCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) UpsertPlayer(playerID, name string) error {
	if m.UpsertPlayerFunc != nil {
		return m.UpsertPlayerFunc(playerID, name)
	}
	return nil
}

func (m *MockStore) UpsertPlayers(players []PlayerInfo) error {
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) UpsertSession(session Session) error {
	if m.UpsertSessionFunc != nil {
		return m.UpsertSessionFunc(session)
	}
	return nil
}

func (m *MockStore) GetSession(sessionID string) (*Session, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(sessionID)
	}
	return nil, ErrSessionNotFound
}

func (m *MockStore) LatestCompletedSessions(limit int) ([]Session, error) {
	if m.LatestCompletedSessionsFunc != nil {
		return m.LatestCompletedSessionsFunc(limit)
	}
	return nil, nil
}

func (m *MockStore) UpsertMatch(match *Match) error {
	if m.UpsertMatchFunc != nil {
		return m.UpsertMatchFunc(match)
	}
	return nil
}

func (m *MockStore) GetMatch(matchID string) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return nil, nil
}

func (m *MockStore) SessionMatches(sessionID string) ([]*Match, error) {
	if m.SessionMatchesFunc != nil {
		return m.SessionMatchesFunc(sessionID)
	}
	return nil, nil
}

func (m *MockStore) CompletedMatchesFrom(sessionID string, mode rating.Mode, round, slot int) ([]*Match, error) {
	if m.CompletedMatchesFromFunc != nil {
		return m.CompletedMatchesFromFunc(sessionID, mode, round, slot)
	}
	return nil, nil
}

func (m *MockStore) SetMatchScore(matchID string, scoreA, scoreB int) error {
	m.mu.Lock()
	m.SetMatchScoreCalls = append(m.SetMatchScoreCalls, struct {
		MatchID        string
		ScoreA, ScoreB int
	}{matchID, scoreA, scoreB})
	m.mu.Unlock()
	if m.SetMatchScoreFunc != nil {
		return m.SetMatchScoreFunc(matchID, scoreA, scoreB)
	}
	return nil
}

func (m *MockStore) TryLockSession(sessionID string) error {
	m.mu.Lock()
	m.TryLockSessionCalls = append(m.TryLockSessionCalls, sessionID)
	m.mu.Unlock()
	if m.TryLockSessionFunc != nil {
		return m.TryLockSessionFunc(sessionID)
	}
	return nil
}

func (m *MockStore) UnlockSession(sessionID string, status RecalcStatus) error {
	m.mu.Lock()
	m.UnlockSessionCalls = append(m.UnlockSessionCalls, struct {
		SessionID string
		Status    RecalcStatus
	}{sessionID, status})
	m.mu.Unlock()
	if m.UnlockSessionFunc != nil {
		return m.UnlockSessionFunc(sessionID, status)
	}
	return nil
}

func (m *MockStore) ForceUnlockSession(sessionID string) error {
	m.mu.Lock()
	m.ForceUnlockSessionCalls = append(m.ForceUnlockSessionCalls, sessionID)
	m.mu.Unlock()
	if m.ForceUnlockSessionFunc != nil {
		return m.ForceUnlockSessionFunc(sessionID)
	}
	return nil
}

func (m *MockStore) GetRating(playerID string, mode rating.Mode) (rating.State, bool, error) {
	if m.GetRatingFunc != nil {
		return m.GetRatingFunc(playerID, mode)
	}
	return rating.State{}, false, nil
}

func (m *MockStore) Leaderboard(mode rating.Mode) ([]PlayerRating, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(mode)
	}
	return nil, nil
}
