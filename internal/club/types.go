package club

import (
	"database/sql"
	"sync"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerInfo represents a player in the store.
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SessionStatus is the lifecycle status of a session.
type SessionStatus string

const (
	SessionUpcoming  SessionStatus = "UPCOMING"
	SessionCompleted SessionStatus = "COMPLETED"
)

// RecalcStatus is the advisory-lock state of a session. Only one
// recalculation may run per session at a time; NEEDS_RERUN marks a
// session whose last recalculation failed after invalidation and must be
// re-run manually.
type RecalcStatus string

const (
	RecalcIdle       RecalcStatus = "IDLE"
	RecalcRunning    RecalcStatus = "RUNNING"
	RecalcNeedsRerun RecalcStatus = "NEEDS_RERUN"
)

// Session is an ordered container of matches. Matches within a session
// are ordered by (round, slot); sessions are ordered by played_at.
type Session struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	PlayedAt        int64         `json:"played_at"`
	Status          SessionStatus `json:"status"`
	RecalcStatus    RecalcStatus  `json:"recalc_status"`
	RecalcStartedAt *int64        `json:"recalc_started_at,omitempty"`
}

// MatchStatus is the completion status of a match.
type MatchStatus string

const (
	MatchPending   MatchStatus = "PENDING"
	MatchCompleted MatchStatus = "COMPLETED"
)

// Match is one recorded match. The participant sides never change once
// recorded; the score pair is the one field an edit may touch.
type Match struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Round     int         `json:"round"`
	Slot      int         `json:"slot"`
	Mode      rating.Mode `json:"mode"`
	SideA     []string    `json:"side_a"`
	SideB     []string    `json:"side_b"`
	ScoreA    int         `json:"score_a"`
	ScoreB    int         `json:"score_b"`
	Status    MatchStatus `json:"status"`
}

// Players returns all participant ids, side A first.
func (m *Match) Players() []string {
	players := make([]string, 0, len(m.SideA)+len(m.SideB))
	players = append(players, m.SideA...)
	players = append(players, m.SideB...)
	return players
}

// PlayerRating is one aggregate leaderboard row: a player's current
// rating state in one mode.
type PlayerRating struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	rating.State
}
