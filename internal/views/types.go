package views

import (
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/snapshot"
)

// Views computes read-only reports from baselines and in-memory replays.
// It never writes a snapshot or an aggregate row and takes no lock:
// concurrent edits are observed either fully applied or not at all.
type Views struct {
	store     club.ClubStore
	snapshots snapshot.SnapshotStore
	cfg       rating.Config
}

// PlayerDelta is one player's rating movement across a session.
type PlayerDelta struct {
	PlayerID string  `json:"player_id"`
	Delta    float64 `json:"delta"`
}

// SessionSummary reports who gained and lost the most rating in one
// session, plus the per-player totals.
type SessionSummary struct {
	SessionID   string        `json:"session_id"`
	BestPlayer  *PlayerDelta  `json:"best_player,omitempty"`
	WorstPlayer *PlayerDelta  `json:"worst_player,omitempty"`
	Deltas      []PlayerDelta `json:"deltas"`
}
