package recalc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/database"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/metrics"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/notifier"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/recalc"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/replay"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/snapshot"
)

type fixture struct {
	controller *recalc.Controller
	store      club.ClubStore
	snapshots  snapshot.SnapshotStore
	metrics    *metrics.MockMetrics
	notifier   *notifier.MockNotifier
	teardown   func()
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	f := &fixture{
		store:     club.New(db),
		snapshots: snapshot.New(db),
		metrics:   metrics.NewMock(),
		notifier:  notifier.NewMock(),
		teardown:  dbTeardown,
	}
	f.controller = recalc.New(f.store, f.snapshots, rating.DefaultConfig(), f.metrics, f.notifier)

	require.NoError(t, f.store.UpsertPlayers([]club.PlayerInfo{
		{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}, {ID: "d", Name: "D"},
	}))
	require.NoError(t, f.store.UpsertSession(club.Session{ID: "s1", Name: "Night one", PlayedAt: 1000, Status: club.SessionCompleted}))
	return f
}

// seedSessionMatches records and applies the reference sequence:
// round 0: a beats b 2-1, round 1: a beats c 2-1, round 2: b beats a 2-1.
func seedSessionMatches(t *testing.T, f *fixture) []*club.Match {
	t.Helper()

	matches := []*club.Match{
		{ID: "m1", SessionID: "s1", Round: 0, Slot: 0, Mode: rating.ModeSingles, SideA: []string{"a"}, SideB: []string{"b"}, ScoreA: 2, ScoreB: 1, Status: club.MatchCompleted},
		{ID: "m2", SessionID: "s1", Round: 1, Slot: 0, Mode: rating.ModeSingles, SideA: []string{"a"}, SideB: []string{"c"}, ScoreA: 2, ScoreB: 1, Status: club.MatchCompleted},
		{ID: "m3", SessionID: "s1", Round: 2, Slot: 0, Mode: rating.ModeSingles, SideA: []string{"b"}, SideB: []string{"a"}, ScoreA: 2, ScoreB: 1, Status: club.MatchCompleted},
	}
	for _, m := range matches {
		require.NoError(t, f.store.UpsertMatch(m))
		require.NoError(t, f.controller.ApplyMatch(m.ID))
	}
	return matches
}

func TestApplyMatch(t *testing.T) {
	f := setup(t)
	defer f.teardown()

	require.NoError(t, f.store.UpsertMatch(&club.Match{
		ID: "m1", SessionID: "s1", Round: 0, Slot: 0, Mode: rating.ModeSingles,
		SideA: []string{"a"}, SideB: []string{"b"}, ScoreA: 2, ScoreB: 1, Status: club.MatchCompleted,
	}))
	require.NoError(t, f.controller.ApplyMatch("m1"))

	stateA, found, err := f.store.GetRating("a", rating.ModeSingles)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1020.0, stateA.Rating)
	assert.Equal(t, 1, stateA.MatchesPlayed)

	stateB, _, err := f.store.GetRating("b", rating.ModeSingles)
	require.NoError(t, err)
	assert.Equal(t, 980.0, stateB.Rating)

	// One snapshot per participant was appended.
	snap, found, err := f.snapshots.Get("m1", "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, stateA, snap, "the aggregate row equals the latest snapshot")

	session, err := f.store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, club.RecalcIdle, session.RecalcStatus, "the lock is released after applying")
}

func TestApplyMatch_Doubles(t *testing.T) {
	f := setup(t)
	defer f.teardown()

	require.NoError(t, f.store.UpsertMatch(&club.Match{
		ID: "d1", SessionID: "s1", Round: 0, Slot: 0, Mode: rating.ModeDoubles,
		SideA: []string{"a", "b"}, SideB: []string{"c", "d"}, ScoreA: 2, ScoreB: 0, Status: club.MatchCompleted,
	}))
	require.NoError(t, f.controller.ApplyMatch("d1"))

	// Both teammates take the same delta, and the singles family is untouched.
	for _, playerID := range []string{"a", "b"} {
		state, found, err := f.store.GetRating(playerID, rating.ModeDoubles)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 1020.0, state.Rating)

		_, found, err = f.store.GetRating(playerID, rating.ModeSingles)
		require.NoError(t, err)
		assert.False(t, found)
	}
}

func TestApplyMatch_Pending(t *testing.T) {
	f := setup(t)
	defer f.teardown()

	require.NoError(t, f.store.UpsertMatch(&club.Match{
		ID: "m1", SessionID: "s1", Round: 0, Slot: 0, Mode: rating.ModeSingles,
		SideA: []string{"a"}, SideB: []string{"b"}, Status: club.MatchPending,
	}))
	err := f.controller.ApplyMatch("m1")
	assert.ErrorIs(t, err, recalc.ErrMatchNotCompleted)
}

func TestEditMatch_PrefixInvariance(t *testing.T) {
	f := setup(t)
	defer f.teardown()
	matches := seedSessionMatches(t, f)

	snapBeforeA, _, err := f.snapshots.Get("m1", "a")
	require.NoError(t, err)
	snapBeforeB, _, err := f.snapshots.Get("m1", "b")
	require.NoError(t, err)

	// Flip the second match: c now beats a.
	finals, err := f.controller.EditMatch("m2", 1, 2)
	require.NoError(t, err)
	require.Len(t, finals, 3)

	// The first match's snapshots are byte-for-byte untouched.
	snapAfterA, _, err := f.snapshots.Get("m1", "a")
	require.NoError(t, err)
	assert.Equal(t, snapBeforeA, snapAfterA)
	snapAfterB, _, err := f.snapshots.Get("m1", "b")
	require.NoError(t, err)
	assert.Equal(t, snapBeforeB, snapAfterB)

	// The recomputed aggregates must equal a from-scratch replay of the
	// full edited sequence.
	matches[1].ScoreA, matches[1].ScoreB = 1, 2
	scratch, err := replay.Run(rating.DefaultConfig(), rating.ModeSingles, nil, matches)
	require.NoError(t, err)
	for _, playerID := range []string{"a", "b", "c"} {
		state, found, err := f.store.GetRating(playerID, rating.ModeSingles)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equalf(t, scratch.Finals[playerID], state, "player %s diverges from a from-scratch replay", playerID)
	}

	session, err := f.store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, club.RecalcIdle, session.RecalcStatus)
}

func TestEditMatch_Idempotent(t *testing.T) {
	f := setup(t)
	defer f.teardown()
	seedSessionMatches(t, f)

	first, err := f.controller.EditMatch("m2", 1, 2)
	require.NoError(t, err)
	countAfterFirst, err := f.snapshots.CountForSession("s1")
	require.NoError(t, err)

	// Re-submitting the identical edit converges on the identical state.
	second, err := f.controller.EditMatch("m2", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	countAfterSecond, err := f.snapshots.CountForSession("s1")
	require.NoError(t, err)
	assert.Equal(t, countAfterFirst, countAfterSecond)
}

func TestEditMatch_FirstOfSession(t *testing.T) {
	f := setup(t)
	defer f.teardown()
	matches := seedSessionMatches(t, f)

	// Editing the session's first match replays the whole family from
	// the default baseline.
	_, err := f.controller.EditMatch("m1", 0, 2)
	require.NoError(t, err)

	matches[0].ScoreA, matches[0].ScoreB = 0, 2
	scratch, err := replay.Run(rating.DefaultConfig(), rating.ModeSingles, nil, matches)
	require.NoError(t, err)
	for _, playerID := range []string{"a", "b", "c"} {
		state, _, err := f.store.GetRating(playerID, rating.ModeSingles)
		require.NoError(t, err)
		assert.Equal(t, scratch.Finals[playerID], state)
	}
}

func TestEditMatch_DoublesRejected(t *testing.T) {
	f := setup(t)
	defer f.teardown()

	require.NoError(t, f.store.UpsertMatch(&club.Match{
		ID: "d1", SessionID: "s1", Round: 0, Slot: 0, Mode: rating.ModeDoubles,
		SideA: []string{"a", "b"}, SideB: []string{"c", "d"}, ScoreA: 2, ScoreB: 0, Status: club.MatchCompleted,
	}))
	require.NoError(t, f.controller.ApplyMatch("d1"))
	countBefore, err := f.snapshots.CountForSession("s1")
	require.NoError(t, err)

	_, err = f.controller.EditMatch("d1", 0, 2)
	assert.ErrorIs(t, err, recalc.ErrUnsupportedMode)

	// The rejection mutates nothing and leaves the session idle.
	countAfter, err := f.snapshots.CountForSession("s1")
	require.NoError(t, err)
	assert.Equal(t, countBefore, countAfter)

	session, err := f.store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, club.RecalcIdle, session.RecalcStatus)

	match, err := f.store.GetMatch("d1")
	require.NoError(t, err)
	assert.Equal(t, 2, match.ScoreA, "the score edit is not recorded")
}

func TestEditMatch_LockContention(t *testing.T) {
	f := setup(t)
	defer f.teardown()
	seedSessionMatches(t, f)

	require.NoError(t, f.store.TryLockSession("s1"))

	_, err := f.controller.EditMatch("m2", 1, 2)
	assert.ErrorIs(t, err, recalc.ErrLockHeld)
	assert.Equal(t, 1, f.metrics.LockContentionCount)

	// The holder's lock is not disturbed by the rejected edit.
	session, err := f.store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, club.RecalcRunning, session.RecalcStatus)
}

func TestEditMatch_PartialFailure(t *testing.T) {
	store := club.NewMock()
	snapshots := snapshot.NewMock()
	mockMetrics := metrics.NewMock()
	mockNotifier := notifier.NewMock()
	controller := recalc.New(store, snapshots, rating.DefaultConfig(), mockMetrics, mockNotifier)

	match := &club.Match{
		ID: "m1", SessionID: "s1", Round: 0, Slot: 0, Mode: rating.ModeSingles,
		SideA: []string{"a"}, SideB: []string{"b"}, ScoreA: 2, ScoreB: 1, Status: club.MatchCompleted,
	}
	store.GetMatchFunc = func(matchID string) (*club.Match, error) { return match, nil }
	store.CompletedMatchesFromFunc = func(sessionID string, mode rating.Mode, round, slot int) ([]*club.Match, error) {
		return []*club.Match{match}, nil
	}

	persistErr := errors.New("disk full")
	snapshots.PersistReplayFunc = func(mode rating.Mode, entries []snapshot.Entry, finals map[string]rating.State) error {
		return persistErr
	}

	_, err := controller.EditMatch("m1", 1, 2)

	var partial *recalc.PartialError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "s1", partial.SessionID)
	assert.ErrorIs(t, err, persistErr)

	// The session is flagged for manual re-run, not silently unlocked.
	require.Len(t, store.UnlockSessionCalls, 1)
	assert.Equal(t, club.RecalcNeedsRerun, store.UnlockSessionCalls[0].Status)
	require.Len(t, mockNotifier.ManualRerunRequiredCalls, 1)
	assert.Equal(t, "s1", mockNotifier.ManualRerunRequiredCalls[0].SessionID)
	assert.Equal(t, 1, mockMetrics.RecalcFailedCount)

	// Invalidation did run before the failure.
	require.Len(t, snapshots.InvalidateFromCalls, 1)
	assert.Equal(t, rating.ModeSingles, snapshots.InvalidateFromCalls[0].Mode)
}

func TestEditMatch_RecoveryAfterPartialFailure(t *testing.T) {
	f := setup(t)
	defer f.teardown()
	matches := seedSessionMatches(t, f)

	// Simulate an earlier run that died after invalidation: forward
	// snapshots are gone and the session is flagged NEEDS_RERUN.
	_, err := f.snapshots.InvalidateFrom("s1", rating.ModeSingles, 1, 0)
	require.NoError(t, err)
	require.NoError(t, f.store.UnlockSession("s1", club.RecalcNeedsRerun))

	// Re-running the same edit is the recovery path.
	_, err = f.controller.EditMatch("m2", 1, 2)
	require.NoError(t, err)

	matches[1].ScoreA, matches[1].ScoreB = 1, 2
	scratch, err := replay.Run(rating.DefaultConfig(), rating.ModeSingles, nil, matches)
	require.NoError(t, err)
	for _, playerID := range []string{"a", "b", "c"} {
		state, _, err := f.store.GetRating(playerID, rating.ModeSingles)
		require.NoError(t, err)
		assert.Equal(t, scratch.Finals[playerID], state)
	}

	session, err := f.store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, club.RecalcIdle, session.RecalcStatus)
}
