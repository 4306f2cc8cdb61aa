package recalc

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/metrics"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/notifier"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/replay"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/snapshot"
)

// New creates a new Controller.
func New(store club.ClubStore, snapshots snapshot.SnapshotStore, cfg rating.Config, m metrics.Metrics, n notifier.Notifier) *Controller {
	return &Controller{
		store:     store,
		snapshots: snapshots,
		cfg:       cfg,
		metrics:   m,
		notifier:  n,
	}
}

// ApplyMatch applies a freshly completed match: it computes the deltas
// from the current aggregate rows, updates them, and appends one
// snapshot per participant. Called exactly once, when a match's score is
// first recorded. No invalidation happens on this path, so a failure
// leaves the session idle and untouched.
func (c *Controller) ApplyMatch(matchID string) error {
	c.metrics.IncRecalcRuns()

	match, err := c.store.GetMatch(matchID)
	if err != nil {
		return err
	}
	if match.Status != club.MatchCompleted {
		return fmt.Errorf("%w: %s", ErrMatchNotCompleted, matchID)
	}
	if err := replay.ValidateSides(match); err != nil {
		return err
	}

	if err := c.lockSession(match.SessionID); err != nil {
		return err
	}
	log.Info("Applying match", "matchID", matchID, "sessionID", match.SessionID, "mode", match.Mode)

	// The aggregate row is, by invariant, the snapshot of each player's
	// most recent match, so it is the correct baseline for appending one
	// new match at the end of the sequence.
	baseline := make(map[string]rating.State)
	for _, playerID := range match.Players() {
		state, found, err := c.store.GetRating(playerID, match.Mode)
		if err != nil {
			return c.failIdle(match, err)
		}
		if found {
			baseline[playerID] = state
		}
	}

	if err := c.replayAndPersist(match, baseline, []*club.Match{match}); err != nil {
		return c.failIdle(match, err)
	}
	return c.store.UnlockSession(match.SessionID, club.RecalcIdle)
}

// EditMatch runs the full historical-edit flow for one match: lock,
// invalidate forward snapshots, resolve baselines, replay, persist,
// verify, unlock. It returns the recomputed final state of every
// affected player.
func (c *Controller) EditMatch(matchID string, scoreA, scoreB int) ([]FinalState, error) {
	c.metrics.IncRecalcRuns()

	match, err := c.store.GetMatch(matchID)
	if err != nil {
		return nil, err
	}

	if err := c.lockSession(match.SessionID); err != nil {
		return nil, err
	}

	// Validation happens under the lock; a failure here rolls back the
	// lock only, nothing has been invalidated yet.
	if err := c.validateEdit(match); err != nil {
		return nil, c.failIdle(match, err)
	}
	log.Info("Editing match", "matchID", matchID, "sessionID", match.SessionID,
		"oldScore", fmt.Sprintf("%d-%d", match.ScoreA, match.ScoreB),
		"newScore", fmt.Sprintf("%d-%d", scoreA, scoreB))

	// Invalidate the edited match and everything after it in this
	// session's rating family. From here on, any failure leaves the
	// session partially invalidated and flagged for manual re-run.
	preCount, err := c.snapshots.CountForSession(match.SessionID)
	if err != nil {
		return nil, c.failIdle(match, err)
	}
	deleted, err := c.snapshots.InvalidateFrom(match.SessionID, match.Mode, match.Round, match.Slot)
	if err != nil {
		return nil, c.failPartial(match, stageInvalidated, err)
	}
	postCount, err := c.snapshots.CountForSession(match.SessionID)
	if err != nil {
		return nil, c.failPartial(match, stageInvalidated, err)
	}
	log.Info("Invalidated forward range", "sessionID", match.SessionID, "deleted", deleted,
		"snapshotsBefore", preCount, "snapshotsAfter", postCount)

	if err := c.store.SetMatchScore(matchID, scoreA, scoreB); err != nil {
		return nil, c.failPartial(match, stageInvalidated, err)
	}

	matches, err := c.store.CompletedMatchesFrom(match.SessionID, match.Mode, match.Round, match.Slot)
	if err != nil {
		return nil, c.failPartial(match, stageInvalidated, err)
	}

	baseline, err := c.resolveBaselines(match, matches)
	if err != nil {
		return nil, c.failPartial(match, stageInvalidated, err)
	}

	if err := c.replayAndPersist(match, baseline, matches); err != nil {
		return nil, c.failPartial(match, stageReplaying, err)
	}

	// Persistence completed; verification reads back what was written
	// and only warns on drift.
	finals, err := c.verify(match)
	if err != nil {
		return nil, c.failIdle(match, err)
	}
	if err := c.store.UnlockSession(match.SessionID, club.RecalcIdle); err != nil {
		return nil, err
	}
	log.Info("Edit complete", "matchID", matchID, "sessionID", match.SessionID, "affectedPlayers", len(finals))
	return finals, nil
}

func (c *Controller) validateEdit(match *club.Match) error {
	if match.Mode != rating.ModeSingles {
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, match.Mode)
	}
	if match.Status != club.MatchCompleted {
		return fmt.Errorf("%w: %s", ErrMatchNotCompleted, match.ID)
	}
	return replay.ValidateSides(match)
}

// resolveBaselines finds the state each participant carried into the
// replay range. If the edited match is the first of its family in the
// session, the baseline is the session baseline (prior-session snapshot
// or the documented default); otherwise it is each player's most recent
// snapshot strictly before the edited match. Invalidation has already
// removed the forward range, so nothing stale can be found.
func (c *Controller) resolveBaselines(edited *club.Match, matches []*club.Match) (map[string]rating.State, error) {
	participants := make(map[string]struct{})
	for _, m := range matches {
		for _, playerID := range m.Players() {
			participants[playerID] = struct{}{}
		}
	}

	first, err := c.store.CompletedMatchesFrom(edited.SessionID, edited.Mode, 0, 0)
	if err != nil {
		return nil, err
	}
	isSessionFirst := len(first) > 0 && first[0].ID == edited.ID

	baseline := make(map[string]rating.State, len(participants))
	for playerID := range participants {
		var state rating.State
		var found bool
		if isSessionFirst {
			state, found, err = c.snapshots.SessionBaseline(playerID, edited.SessionID, edited.Mode)
		} else {
			state, found, err = c.snapshots.Before(playerID, edited.ID, edited.Mode)
		}
		if err != nil {
			return nil, err
		}
		if found {
			baseline[playerID] = state
		}
		// Not found means no prior history: the replay engine falls
		// back to the documented initial state.
	}
	return baseline, nil
}

// replayAndPersist runs the replay engine over the range and writes its
// output as one batch: a snapshot per (match, player) pair plus the
// aggregate rows.
func (c *Controller) replayAndPersist(match *club.Match, baseline map[string]rating.State, matches []*club.Match) error {
	start := time.Now()
	result, err := replay.Run(c.cfg, match.Mode, baseline, matches)
	if err != nil {
		return err
	}
	c.metrics.ObserveReplayDuration(time.Since(start).Seconds())
	c.metrics.AddMatchesReplayed(len(matches))

	entries := make([]snapshot.Entry, len(result.Records))
	for i, record := range result.Records {
		entries[i] = snapshot.Entry{
			MatchID:  record.MatchID,
			PlayerID: record.PlayerID,
			Mode:     match.Mode,
			State:    record.State,
		}
	}
	return c.snapshots.PersistReplay(match.Mode, entries, result.Finals)
}

// verify re-reads the aggregate rows and compares them against the
// snapshots just written. A mismatch is logged as an integrity warning,
// never a failure: last write wins and the persisted value is
// authoritative going forward.
func (c *Controller) verify(match *club.Match) ([]FinalState, error) {
	matches, err := c.store.CompletedMatchesFrom(match.SessionID, match.Mode, match.Round, match.Slot)
	if err != nil {
		return nil, err
	}

	lastByPlayer := make(map[string]rating.State)
	for _, m := range matches {
		for _, playerID := range m.Players() {
			state, found, err := c.snapshots.Get(m.ID, playerID)
			if err != nil {
				return nil, err
			}
			if found {
				lastByPlayer[playerID] = state
			}
		}
	}

	finals := make([]FinalState, 0, len(lastByPlayer))
	for playerID, expected := range lastByPlayer {
		persisted, found, err := c.store.GetRating(playerID, match.Mode)
		if err != nil {
			return nil, err
		}
		if !found || persisted != expected {
			c.metrics.IncIntegrityWarnings()
			detail := fmt.Sprintf("player %s: aggregate %+v does not match last snapshot %+v", playerID, persisted, expected)
			log.Warn("Computed-vs-persisted mismatch after replay", "sessionID", match.SessionID, "matchID", match.ID, "playerID", playerID)
			c.notifier.IntegrityWarning(match.SessionID, match.ID, detail)
		}
		finals = append(finals, FinalState{PlayerID: playerID, Mode: match.Mode, State: persisted})
	}
	sort.Slice(finals, func(i, j int) bool { return finals[i].PlayerID < finals[j].PlayerID })
	return finals, nil
}

func (c *Controller) lockSession(sessionID string) error {
	if err := c.store.TryLockSession(sessionID); err != nil {
		if errors.Is(err, club.ErrSessionLocked) {
			c.metrics.IncLockContention()
			return fmt.Errorf("%w: session %s", ErrLockHeld, sessionID)
		}
		return err
	}
	return nil
}

// failIdle records a failure before any invalidation happened (or after
// persistence fully completed): the lock is rolled back to IDLE and the
// error returned as-is.
func (c *Controller) failIdle(match *club.Match, err error) error {
	c.metrics.IncRecalcFailed()
	if unlockErr := c.store.UnlockSession(match.SessionID, club.RecalcIdle); unlockErr != nil {
		log.Error("Failed to release session lock", "error", unlockErr, "sessionID", match.SessionID)
	}
	return err
}

// failPartial records a failure after forward snapshots were
// invalidated. The session is left in NEEDS_RERUN rather than IDLE:
// invalidated snapshots are not resurrected, and the safe recovery is to
// re-run the same edit.
func (c *Controller) failPartial(match *club.Match, stage string, err error) error {
	c.metrics.IncRecalcFailed()
	partial := &PartialError{SessionID: match.SessionID, MatchID: match.ID, Stage: stage, Err: err}
	log.Error("Recalculation failed", "sessionID", match.SessionID, "matchID", match.ID, "stage", stage, "error", err)
	c.notifier.ManualRerunRequired(match.SessionID, match.ID, partial.Error())
	if unlockErr := c.store.UnlockSession(match.SessionID, club.RecalcNeedsRerun); unlockErr != nil {
		log.Error("Failed to flag session for manual re-run", "error", unlockErr, "sessionID", match.SessionID)
	}
	return partial
}
