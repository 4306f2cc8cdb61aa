package snapshot

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
)

// New creates a new SnapshotStore.
func New(db *sql.DB) SnapshotStore {
	return &store{
		db: db,
	}
}

func (s *store) Write(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeEntry(tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *store) Get(matchID, playerID string) (rating.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT rating, matches_played, wins, losses, draws, sets_won, sets_lost
		FROM rating_snapshots WHERE match_id = ? AND player_id = ?
	`, matchID, playerID)
	return scanState(row)
}

// Before walks the global chronological order: sessions by played_at,
// matches by (round, slot, id) within a session. The edited match's own
// snapshot never qualifies because the comparison is strict.
func (s *store) Before(playerID, matchID string, mode rating.Mode) (rating.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT rs.rating, rs.matches_played, rs.wins, rs.losses, rs.draws, rs.sets_won, rs.sets_lost
		FROM rating_snapshots rs
		JOIN matches m ON rs.match_id = m.id
		JOIN sessions se ON m.session_id = se.id
		JOIN matches ref ON ref.id = ?
		JOIN sessions refse ON ref.session_id = refse.id
		WHERE rs.player_id = ? AND rs.mode = ?
		  AND (se.played_at < refse.played_at
		       OR (se.played_at = refse.played_at
		           AND (m.round < ref.round
		                OR (m.round = ref.round AND (m.slot < ref.slot
		                    OR (m.slot = ref.slot AND m.id < ref.id))))))
		ORDER BY se.played_at DESC, m.round DESC, m.slot DESC, m.id DESC
		LIMIT 1
	`, matchID, playerID, string(mode))
	return scanState(row)
}

// SessionBaseline resolves the state a player carried into a session:
// their snapshot at the latest match of any earlier session.
func (s *store) SessionBaseline(playerID, sessionID string, mode rating.Mode) (rating.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT rs.rating, rs.matches_played, rs.wins, rs.losses, rs.draws, rs.sets_won, rs.sets_lost
		FROM rating_snapshots rs
		JOIN matches m ON rs.match_id = m.id
		JOIN sessions se ON m.session_id = se.id
		WHERE rs.player_id = ? AND rs.mode = ?
		  AND se.played_at < (SELECT played_at FROM sessions WHERE id = ?)
		ORDER BY se.played_at DESC, m.round DESC, m.slot DESC, m.id DESC
		LIMIT 1
	`, playerID, string(mode), sessionID)
	return scanState(row)
}

func (s *store) InvalidateFrom(sessionID string, mode rating.Mode, round, slot int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	matchFilter := `
		SELECT id FROM matches
		WHERE session_id = ? AND mode = ? AND (round > ? OR (round = ? AND slot >= ?))
	`

	res, err := tx.Exec(`DELETE FROM rating_snapshots WHERE match_id IN (`+matchFilter+`)`,
		sessionID, string(mode), round, round, slot)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate snapshots: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read invalidation count: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM rating_history WHERE match_id IN (`+matchFilter+`)`,
		sessionID, string(mode), round, round, slot); err != nil {
		return 0, fmt.Errorf("failed to invalidate audit history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit invalidation: %w", err)
	}
	log.Info("Invalidated forward snapshots", "sessionID", sessionID, "mode", mode, "round", round, "slot", slot, "deleted", deleted)
	return deleted, nil
}

func (s *store) CountForSession(sessionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM rating_snapshots rs
		JOIN matches m ON rs.match_id = m.id
		WHERE m.session_id = ?
	`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count session snapshots: %w", err)
	}
	return count, nil
}

func (s *store) PersistReplay(mode rating.Mode, entries []Entry, finals map[string]rating.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		if err := writeEntry(tx, entry); err != nil {
			return err
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO player_ratings (player_id, mode, rating, matches_played, wins, losses, draws, sets_won, sets_lost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player_id, mode) DO UPDATE SET
			rating = excluded.rating,
			matches_played = excluded.matches_played,
			wins = excluded.wins,
			losses = excluded.losses,
			draws = excluded.draws,
			sets_won = excluded.sets_won,
			sets_lost = excluded.sets_lost;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare aggregate statement: %w", err)
	}
	defer stmt.Close()

	for playerID, state := range finals {
		if _, err := stmt.Exec(playerID, string(mode), state.Rating, state.MatchesPlayed, state.Wins, state.Losses, state.Draws, state.SetsWon, state.SetsLost); err != nil {
			return fmt.Errorf("failed to upsert aggregate rating for player %s: %w", playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replay batch: %w", err)
	}
	log.Debug("Persisted replay batch", "snapshots", len(entries), "players", len(finals), "mode", mode)
	return nil
}

func writeEntry(tx *sql.Tx, entry Entry) error {
	now := time.Now().Unix()
	_, err := tx.Exec(`
		INSERT INTO rating_snapshots (match_id, player_id, mode, rating, matches_played, wins, losses, draws, sets_won, sets_lost, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id, player_id) DO UPDATE SET
			mode = excluded.mode,
			rating = excluded.rating,
			matches_played = excluded.matches_played,
			wins = excluded.wins,
			losses = excluded.losses,
			draws = excluded.draws,
			sets_won = excluded.sets_won,
			sets_lost = excluded.sets_lost,
			created_at = excluded.created_at;
	`, entry.MatchID, entry.PlayerID, string(entry.Mode), entry.State.Rating, entry.State.MatchesPlayed,
		entry.State.Wins, entry.State.Losses, entry.State.Draws, entry.State.SetsWon, entry.State.SetsLost, now)
	if err != nil {
		return fmt.Errorf("failed to write snapshot for match %s player %s: %w", entry.MatchID, entry.PlayerID, err)
	}

	payload, err := msgpack.Marshal(auditRecord{
		MatchID:    entry.MatchID,
		PlayerID:   entry.PlayerID,
		Mode:       entry.Mode,
		State:      entry.State,
		RecordedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO rating_history (id, match_id, player_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), entry.MatchID, entry.PlayerID, payload, now); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

func scanState(row *sql.Row) (rating.State, bool, error) {
	var state rating.State
	err := row.Scan(&state.Rating, &state.MatchesPlayed, &state.Wins, &state.Losses, &state.Draws, &state.SetsWon, &state.SetsLost)
	if err != nil {
		if err == sql.ErrNoRows {
			return rating.State{}, false, nil
		}
		return rating.State{}, false, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	return state, true, nil
}
