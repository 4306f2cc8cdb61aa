package replay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/replay"
)

func singlesMatch(id string, round int, a, b string, scoreA, scoreB int) *club.Match {
	return &club.Match{
		ID:        id,
		SessionID: "s1",
		Round:     round,
		Slot:      0,
		Mode:      rating.ModeSingles,
		SideA:     []string{a},
		SideB:     []string{b},
		ScoreA:    scoreA,
		ScoreB:    scoreB,
		Status:    club.MatchCompleted,
	}
}

func TestRun_SinglesFromScratch(t *testing.T) {
	cfg := rating.DefaultConfig()

	result, err := replay.Run(cfg, rating.ModeSingles, nil, []*club.Match{
		singlesMatch("m1", 0, "a", "b", 2, 1),
	})
	require.NoError(t, err)

	// Two new players at even odds: the winner takes K/2 = 20 points.
	assert.Equal(t, 1020.0, result.Finals["a"].Rating)
	assert.Equal(t, 980.0, result.Finals["b"].Rating)
	assert.Equal(t, 1, result.Finals["a"].Wins)
	assert.Equal(t, 1, result.Finals["b"].Losses)
	assert.Equal(t, 2, result.Finals["a"].SetsWon)
	assert.Equal(t, 1, result.Finals["a"].SetsLost)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "a", result.Records[0].PlayerID, "side A's record comes first")
	assert.Equal(t, "b", result.Records[1].PlayerID)
}

func TestRun_ChainsStateThroughTheRange(t *testing.T) {
	cfg := rating.DefaultConfig()

	result, err := replay.Run(cfg, rating.ModeSingles, nil, []*club.Match{
		singlesMatch("m1", 0, "a", "b", 2, 1),
		singlesMatch("m2", 1, "a", "c", 2, 1),
		singlesMatch("m3", 2, "b", "a", 2, 1),
	})
	require.NoError(t, err)

	// Each match must see the working state left by the previous one,
	// so a's third match is played at the rating earned in the first two.
	assert.Equal(t, 3, result.Finals["a"].MatchesPlayed)
	assert.Equal(t, 2, result.Finals["b"].MatchesPlayed)
	assert.Equal(t, 1, result.Finals["c"].MatchesPlayed)
	require.Len(t, result.Records, 6)

	// Zero-sum: total points in play never change.
	total := result.Finals["a"].Rating + result.Finals["b"].Rating + result.Finals["c"].Rating
	assert.InDelta(t, 3000.0, total, 1e-9)
}

func TestRun_UsesBaseline(t *testing.T) {
	cfg := rating.DefaultConfig()
	baseline := map[string]rating.State{
		"a": {Rating: 1200, MatchesPlayed: 40},
	}

	result, err := replay.Run(cfg, rating.ModeSingles, baseline, []*club.Match{
		singlesMatch("m1", 0, "a", "b", 1, 2),
	})
	require.NoError(t, err)

	// a is a 1200-rated veteran (K=24) losing to a 1000-rated newcomer:
	// expected ≈ 0.760, delta = round(24 * (0 - 0.760)) = -18.2.
	assert.InDelta(t, 1181.8, result.Finals["a"].Rating, 1e-9)
	assert.InDelta(t, 1018.2, result.Finals["b"].Rating, 1e-9)
	assert.Equal(t, 41, result.Finals["a"].MatchesPlayed)

	// The input baseline is never mutated.
	assert.Equal(t, 1200.0, baseline["a"].Rating)
	assert.Equal(t, 40, baseline["a"].MatchesPlayed)
}

func TestRun_Doubles(t *testing.T) {
	cfg := rating.DefaultConfig()
	baseline := map[string]rating.State{
		"a1": {Rating: 1100, MatchesPlayed: 50},
		"a2": {Rating: 900, MatchesPlayed: 5},
		"b1": {Rating: 1000, MatchesPlayed: 50},
		"b2": {Rating: 1000, MatchesPlayed: 50},
	}
	match := &club.Match{
		ID: "d1", SessionID: "s1", Mode: rating.ModeDoubles,
		SideA: []string{"a1", "a2"}, SideB: []string{"b1", "b2"},
		ScoreA: 2, ScoreB: 0, Status: club.MatchCompleted,
	}

	result, err := replay.Run(cfg, rating.ModeDoubles, baseline, []*club.Match{match})
	require.NoError(t, err)

	// Team A averages 1000 against 1000, and its least experienced
	// member (5 matches) puts the side on K=40: delta = 40 * 0.5 = 20,
	// credited equally to both teammates.
	assert.Equal(t, 1120.0, result.Finals["a1"].Rating)
	assert.Equal(t, 920.0, result.Finals["a2"].Rating)
	assert.Equal(t, 980.0, result.Finals["b1"].Rating)
	assert.Equal(t, 980.0, result.Finals["b2"].Rating)
}

func TestRun_Draw(t *testing.T) {
	cfg := rating.DefaultConfig()
	baseline := map[string]rating.State{
		"a": {Rating: 1100},
	}

	result, err := replay.Run(cfg, rating.ModeSingles, baseline, []*club.Match{
		singlesMatch("m1", 0, "a", "b", 1, 1),
	})
	require.NoError(t, err)

	// The favourite drops points on a draw: expected ≈ 0.640,
	// delta = round(40 * (0.5 - 0.640)) = -5.6.
	assert.InDelta(t, 1094.4, result.Finals["a"].Rating, 1e-9)
	assert.InDelta(t, 1005.6, result.Finals["b"].Rating, 1e-9)
	assert.Equal(t, 1, result.Finals["a"].Draws)
	assert.Equal(t, 1, result.Finals["b"].Draws)
}

func TestRun_Rejections(t *testing.T) {
	cfg := rating.DefaultConfig()

	t.Run("duplicate match id", func(t *testing.T) {
		_, err := replay.Run(cfg, rating.ModeSingles, nil, []*club.Match{
			singlesMatch("m1", 0, "a", "b", 2, 1),
			singlesMatch("m1", 1, "a", "c", 2, 1),
		})
		assert.ErrorIs(t, err, replay.ErrDuplicateMatch)
	})

	t.Run("mode mismatch", func(t *testing.T) {
		_, err := replay.Run(cfg, rating.ModeDoubles, nil, []*club.Match{
			singlesMatch("m1", 0, "a", "b", 2, 1),
		})
		assert.Error(t, err)
	})

	t.Run("pending match", func(t *testing.T) {
		m := singlesMatch("m1", 0, "a", "b", 0, 0)
		m.Status = club.MatchPending
		_, err := replay.Run(cfg, rating.ModeSingles, nil, []*club.Match{m})
		assert.Error(t, err)
	})
}

func TestValidateSides(t *testing.T) {
	t.Run("valid singles", func(t *testing.T) {
		assert.NoError(t, replay.ValidateSides(singlesMatch("m1", 0, "a", "b", 2, 1)))
	})

	t.Run("player on both sides", func(t *testing.T) {
		assert.Error(t, replay.ValidateSides(singlesMatch("m1", 0, "a", "a", 2, 1)))
	})

	t.Run("doubles side counts", func(t *testing.T) {
		m := &club.Match{
			ID: "d1", Mode: rating.ModeDoubles,
			SideA: []string{"a1"}, SideB: []string{"b1", "b2"},
			Status: club.MatchCompleted,
		}
		assert.Error(t, replay.ValidateSides(m))
	})
}
