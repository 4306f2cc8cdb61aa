package club

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
)

// ErrSessionLocked is returned by TryLockSession when a recalculation is
// already running for the session. Callers may retry later; concurrent
// edits are rejected, never queued.
var ErrSessionLocked = errors.New("session recalculation already in progress")

// ErrSessionNotFound is returned when a session id does not exist.
var ErrSessionNotFound = errors.New("session not found")

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

func (s *store) UpsertPlayer(playerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO players (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name;
	`, playerID, name)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", playerID, err)
	}
	return nil
}

func (s *store) UpsertPlayers(players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare players statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.Exec(p.ID, p.Name); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name FROM players ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		var p PlayerInfo
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *store) UpsertSession(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, name, played_at, status) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			played_at = excluded.played_at,
			status = excluded.status;
	`, session.ID, session.Name, session.PlayedAt, string(session.Status))
	if err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", session.ID, err)
	}
	return nil
}

func (s *store) GetSession(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, played_at, status, recalc_status, recalc_started_at
		FROM sessions WHERE id = ?
	`, sessionID)

	var session Session
	var recalcStartedAt sql.NullInt64
	err := row.Scan(&session.ID, &session.Name, &session.PlayedAt, &session.Status, &session.RecalcStatus, &recalcStartedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	if recalcStartedAt.Valid {
		session.RecalcStartedAt = &recalcStartedAt.Int64
	}
	return &session, nil
}

// LatestCompletedSessions returns completed sessions, most recent first.
func (s *store) LatestCompletedSessions(limit int) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, played_at, status, recalc_status, recalc_started_at
		FROM sessions WHERE status = ? ORDER BY played_at DESC LIMIT ?
	`, string(SessionCompleted), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var session Session
		var recalcStartedAt sql.NullInt64
		if err := rows.Scan(&session.ID, &session.Name, &session.PlayedAt, &session.Status, &session.RecalcStatus, &recalcStartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		if recalcStartedAt.Valid {
			session.RecalcStartedAt = &recalcStartedAt.Int64
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *store) UpsertMatch(match *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sideAJSON, err := json.Marshal(match.SideA)
	if err != nil {
		return fmt.Errorf("failed to marshal side A: %w", err)
	}
	sideBJSON, err := json.Marshal(match.SideB)
	if err != nil {
		return fmt.Errorf("failed to marshal side B: %w", err)
	}

	// The participant sides are written on insert only: a match's
	// participant set never changes, only its score.
	_, err = s.db.Exec(`
		INSERT INTO matches (id, session_id, round, slot, mode, side_a_json, side_b_json, score_a, score_b, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			score_a = excluded.score_a,
			score_b = excluded.score_b,
			status = excluded.status;
	`, match.ID, match.SessionID, match.Round, match.Slot, string(match.Mode), sideAJSON, sideBJSON, match.ScoreA, match.ScoreB, string(match.Status))
	if err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", match.ID, err)
	}
	return nil
}

func (s *store) GetMatch(matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, session_id, round, slot, mode, side_a_json, side_b_json, score_a, score_b, status
		FROM matches WHERE id = ?
	`, matchID)

	match, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match not found: %s", matchID)
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return match, nil
}

// SessionMatches returns every match of a session in ordinal order.
func (s *store) SessionMatches(sessionID string) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, session_id, round, slot, mode, side_a_json, side_b_json, score_a, score_b, status
		FROM matches WHERE session_id = ?
		ORDER BY round, slot, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// CompletedMatchesFrom returns the completed matches of one rating
// family in a session at or after the given ordinal position, in ordinal
// order. This is the replay range for an edit at (round, slot); matches
// of the other mode are untouched because the two families are updated
// by disjoint match sets.
func (s *store) CompletedMatchesFrom(sessionID string, mode rating.Mode, round, slot int) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, session_id, round, slot, mode, side_a_json, side_b_json, score_a, score_b, status
		FROM matches
		WHERE session_id = ? AND mode = ? AND status = ? AND (round > ? OR (round = ? AND slot >= ?))
		ORDER BY round, slot, id
	`, sessionID, string(mode), string(MatchCompleted), round, round, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches from ordinal: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (s *store) SetMatchScore(matchID string, scoreA, scoreB int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE matches SET score_a = ?, score_b = ?, status = ? WHERE id = ?
	`, scoreA, scoreB, string(MatchCompleted), matchID)
	if err != nil {
		return fmt.Errorf("failed to set score for match %s: %w", matchID, err)
	}
	return nil
}

// TryLockSession acquires the per-session recalculation lock. The UPDATE
// is the mutual exclusion: it only succeeds when no recalculation is
// running, so concurrent callers race on a single atomic statement
// rather than on an in-process mutex (multiple server instances may
// handle requests at once).
func (s *store) TryLockSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE sessions SET recalc_status = ?, recalc_started_at = ?
		WHERE id = ? AND recalc_status != ?
	`, string(RecalcRunning), time.Now().Unix(), sessionID, string(RecalcRunning))
	if err != nil {
		return fmt.Errorf("failed to acquire session lock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read lock result: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM sessions WHERE id = ?)", sessionID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		if !exists {
			return ErrSessionNotFound
		}
		return ErrSessionLocked
	}
	log.Debug("Acquired session recalculation lock", "sessionID", sessionID)
	return nil
}

// UnlockSession releases the lock, leaving the session in the given
// status (IDLE on success, NEEDS_RERUN after a partial failure).
func (s *store) UnlockSession(sessionID string, status RecalcStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE sessions SET recalc_status = ?, recalc_started_at = NULL WHERE id = ?
	`, string(status), sessionID)
	if err != nil {
		return fmt.Errorf("failed to release session lock: %w", err)
	}
	log.Debug("Released session recalculation lock", "sessionID", sessionID, "status", status)
	return nil
}

// ForceUnlockSession is the stuck-lock recovery path: it clears the lock
// unconditionally. Exposed to operators only; there is no TTL expiry.
func (s *store) ForceUnlockSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE sessions SET recalc_status = ?, recalc_started_at = NULL WHERE id = ?
	`, string(RecalcIdle), sessionID)
	if err != nil {
		return fmt.Errorf("failed to force-unlock session %s: %w", sessionID, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrSessionNotFound
	}
	log.Warn("Force-unlocked session", "sessionID", sessionID)
	return nil
}

// GetRating returns the current aggregate rating state for a player in
// one mode. The second return value reports whether a row exists.
func (s *store) GetRating(playerID string, mode rating.Mode) (rating.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT rating, matches_played, wins, losses, draws, sets_won, sets_lost
		FROM player_ratings WHERE player_id = ? AND mode = ?
	`, playerID, string(mode))

	var state rating.State
	err := row.Scan(&state.Rating, &state.MatchesPlayed, &state.Wins, &state.Losses, &state.Draws, &state.SetsWon, &state.SetsLost)
	if err != nil {
		if err == sql.ErrNoRows {
			return rating.State{}, false, nil
		}
		return rating.State{}, false, fmt.Errorf("failed to get rating for player %s: %w", playerID, err)
	}
	return state, true, nil
}

// Leaderboard returns every aggregate rating row for a mode, best rating
// first, ties broken by player id so repeated reads are stable.
func (s *store) Leaderboard(mode rating.Mode) ([]PlayerRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT pr.player_id, p.name, pr.rating, pr.matches_played, pr.wins, pr.losses, pr.draws, pr.sets_won, pr.sets_lost
		FROM player_ratings pr
		JOIN players p ON pr.player_id = p.id
		WHERE pr.mode = ?
		ORDER BY pr.rating DESC, pr.player_id
	`, string(mode))
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var board []PlayerRating
	for rows.Next() {
		var entry PlayerRating
		err := rows.Scan(&entry.PlayerID, &entry.PlayerName, &entry.Rating, &entry.MatchesPlayed, &entry.Wins, &entry.Losses, &entry.Draws, &entry.SetsWon, &entry.SetsLost)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		board = append(board, entry)
	}
	return board, nil
}

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var match Match
	var sideAJSON, sideBJSON string
	var scoreA, scoreB sql.NullInt64

	err := scanner.Scan(
		&match.ID, &match.SessionID, &match.Round, &match.Slot, &match.Mode,
		&sideAJSON, &sideBJSON, &scoreA, &scoreB, &match.Status,
	)
	if err != nil {
		return nil, err
	}

	match.ScoreA = int(scoreA.Int64)
	match.ScoreB = int(scoreB.Int64)

	if err := json.Unmarshal([]byte(sideAJSON), &match.SideA); err != nil {
		return nil, fmt.Errorf("failed to unmarshal side_a_json for match %s: %w", match.ID, err)
	}
	if err := json.Unmarshal([]byte(sideBJSON), &match.SideB); err != nil {
		return nil, fmt.Errorf("failed to unmarshal side_b_json for match %s: %w", match.ID, err)
	}
	return &match, nil
}

func collectMatches(rows *sql.Rows) ([]*Match, error) {
	var matches []*Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}
