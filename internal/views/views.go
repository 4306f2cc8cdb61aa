// Package views implements the derived read reports: session summaries
// and rank movements. Everything here is a pure consumer of baselines
// and the replay engine; the per-match intermediate states are discarded
// and storage is never touched.
package views

import (
	"fmt"
	"sort"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/replay"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/snapshot"
)

// New creates a new Views instance.
func New(store club.ClubStore, snapshots snapshot.SnapshotStore, cfg rating.Config) *Views {
	return &Views{
		store:     store,
		snapshots: snapshots,
		cfg:       cfg,
	}
}

// SessionSummary replays the session's completed matches from each
// player's session baseline and diffs the result against that baseline.
// Ratings from both families count toward a player's total movement.
func (v *Views) SessionSummary(sessionID string) (*SessionSummary, error) {
	if _, err := v.store.GetSession(sessionID); err != nil {
		return nil, err
	}

	matches, err := v.store.SessionMatches(sessionID)
	if err != nil {
		return nil, err
	}

	byMode := make(map[rating.Mode][]*club.Match)
	for _, m := range matches {
		if m.Status == club.MatchCompleted {
			byMode[m.Mode] = append(byMode[m.Mode], m)
		}
	}

	deltas := make(map[string]float64)
	for mode, modeMatches := range byMode {
		baseline, err := v.sessionBaselines(sessionID, mode, modeMatches)
		if err != nil {
			return nil, err
		}
		result, err := replay.Run(v.cfg, mode, baseline, modeMatches)
		if err != nil {
			return nil, fmt.Errorf("failed to replay session %s: %w", sessionID, err)
		}
		for playerID, final := range result.Finals {
			before, ok := baseline[playerID]
			if !ok {
				before = v.cfg.InitialState()
			}
			deltas[playerID] += final.Rating - before.Rating
		}
	}

	summary := &SessionSummary{SessionID: sessionID, Deltas: make([]PlayerDelta, 0, len(deltas))}
	for playerID, delta := range deltas {
		summary.Deltas = append(summary.Deltas, PlayerDelta{PlayerID: playerID, Delta: delta})
	}
	// Biggest gain first; player id breaks ties so repeated queries are
	// reproducible.
	sort.Slice(summary.Deltas, func(i, j int) bool {
		if summary.Deltas[i].Delta != summary.Deltas[j].Delta {
			return summary.Deltas[i].Delta > summary.Deltas[j].Delta
		}
		return summary.Deltas[i].PlayerID < summary.Deltas[j].PlayerID
	})
	if len(summary.Deltas) > 0 {
		best := summary.Deltas[0]
		worst := summary.Deltas[len(summary.Deltas)-1]
		summary.BestPlayer = &best
		summary.WorstPlayer = &worst
	}
	return summary, nil
}

// RankMovements compares each requested player's current leaderboard
// rank against their rank as of the start of the most recent completed
// session. Positive values mean the player climbed.
func (v *Views) RankMovements(playerIDs []string, mode rating.Mode) (map[string]int, error) {
	movements := make(map[string]int, len(playerIDs))
	for _, playerID := range playerIDs {
		movements[playerID] = 0
	}

	board, err := v.store.Leaderboard(mode)
	if err != nil {
		return nil, err
	}
	if len(board) == 0 {
		return movements, nil
	}

	sessions, err := v.store.LatestCompletedSessions(1)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return movements, nil
	}
	reference := sessions[0]

	currentRanks := make(map[string]int, len(board))
	previous := make([]PlayerDelta, 0, len(board))
	for i, entry := range board {
		currentRanks[entry.PlayerID] = i + 1
		state, found, err := v.snapshots.SessionBaseline(entry.PlayerID, reference.ID, mode)
		if err != nil {
			return nil, err
		}
		if !found {
			state = v.cfg.InitialState()
		}
		previous = append(previous, PlayerDelta{PlayerID: entry.PlayerID, Delta: state.Rating})
	}

	sort.Slice(previous, func(i, j int) bool {
		if previous[i].Delta != previous[j].Delta {
			return previous[i].Delta > previous[j].Delta
		}
		return previous[i].PlayerID < previous[j].PlayerID
	})
	previousRanks := make(map[string]int, len(previous))
	for i, entry := range previous {
		previousRanks[entry.PlayerID] = i + 1
	}

	for _, playerID := range playerIDs {
		current, okNow := currentRanks[playerID]
		prior, okThen := previousRanks[playerID]
		if okNow && okThen {
			movements[playerID] = prior - current
		}
	}
	return movements, nil
}

func (v *Views) sessionBaselines(sessionID string, mode rating.Mode, matches []*club.Match) (map[string]rating.State, error) {
	baseline := make(map[string]rating.State)
	for _, m := range matches {
		for _, playerID := range m.Players() {
			if _, seen := baseline[playerID]; seen {
				continue
			}
			state, found, err := v.snapshots.SessionBaseline(playerID, sessionID, mode)
			if err != nil {
				return nil, err
			}
			if found {
				baseline[playerID] = state
			}
		}
	}
	return baseline, nil
}
