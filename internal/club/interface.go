package club

import "github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"

// ClubStore defines the interface for interacting with the club's data:
// players, sessions, matches, the per-session recalculation lock, and
// read access to the aggregate rating rows.
type ClubStore interface {
	UpsertPlayer(playerID, name string) error
	UpsertPlayers(players []PlayerInfo) error
	IsKnownPlayer(playerID string) bool
	GetAllPlayers() ([]PlayerInfo, error)

	UpsertSession(session Session) error
	GetSession(sessionID string) (*Session, error)
	LatestCompletedSessions(limit int) ([]Session, error)

	UpsertMatch(match *Match) error
	GetMatch(matchID string) (*Match, error)
	SessionMatches(sessionID string) ([]*Match, error)
	CompletedMatchesFrom(sessionID string, mode rating.Mode, round, slot int) ([]*Match, error)
	SetMatchScore(matchID string, scoreA, scoreB int) error

	TryLockSession(sessionID string) error
	UnlockSession(sessionID string, status RecalcStatus) error
	ForceUnlockSession(sessionID string) error

	GetRating(playerID string, mode rating.Mode) (rating.State, bool, error)
	Leaderboard(mode rating.Mode) ([]PlayerRating, error)
}
