package rating_test

import (
	"math"
	"testing"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedScore(t *testing.T) {
	cfg := rating.DefaultConfig()

	t.Run("equal ratings give even odds", func(t *testing.T) {
		assert.InDelta(t, 0.5, cfg.Expected(1000, 1000), 1e-9)
	})

	t.Run("spread advantage gives 10-to-1 odds", func(t *testing.T) {
		// A player rated one full spread above the opponent is expected
		// to score 10/11.
		assert.InDelta(t, 10.0/11.0, cfg.Expected(1400, 1000), 1e-9)
	})

	t.Run("expectations of both sides sum to one", func(t *testing.T) {
		a := cfg.Expected(1234, 987)
		b := cfg.Expected(987, 1234)
		assert.InDelta(t, 1.0, a+b, 1e-9)
	})
}

func TestKTiers(t *testing.T) {
	cfg := rating.DefaultConfig()

	assert.Equal(t, 40.0, cfg.KFor(0))
	assert.Equal(t, 40.0, cfg.KFor(9))
	assert.Equal(t, 32.0, cfg.KFor(10))
	assert.Equal(t, 32.0, cfg.KFor(29))
	assert.Equal(t, 24.0, cfg.KFor(30))
	assert.Equal(t, 24.0, cfg.KFor(500))
}

func TestDelta(t *testing.T) {
	cfg := rating.DefaultConfig()

	t.Run("even match win for a new player", func(t *testing.T) {
		d := cfg.Delta(1000, 1000, rating.OutcomeWin, 0)
		assert.Equal(t, 20.0, d)
	})

	t.Run("even match draw moves nobody", func(t *testing.T) {
		d := cfg.Delta(1000, 1000, rating.OutcomeDraw, 0)
		assert.Equal(t, 0.0, d)
	})

	t.Run("seasoned player moves slower", func(t *testing.T) {
		newbie := cfg.Delta(1000, 1000, rating.OutcomeWin, 0)
		veteran := cfg.Delta(1000, 1000, rating.OutcomeWin, 100)
		assert.Greater(t, newbie, veteran)
		assert.Equal(t, 12.0, veteran)
	})

	t.Run("upset win pays more than expected win", func(t *testing.T) {
		upset := cfg.Delta(1000, 1200, rating.OutcomeWin, 0)
		expected := cfg.Delta(1200, 1000, rating.OutcomeWin, 0)
		assert.Greater(t, upset, expected)
	})

	t.Run("delta is rounded to one decimal", func(t *testing.T) {
		d := cfg.Delta(1050, 1000, rating.OutcomeWin, 0)
		assert.InDelta(t, d, math.Round(d*10)/10, 1e-12)
	})
}

func TestZeroSumByConstruction(t *testing.T) {
	// The controller computes one delta from side A's perspective and
	// applies +d / -d. Verify the pattern is exactly zero-sum.
	cfg := rating.DefaultConfig()
	d := cfg.Delta(1100, 950, rating.OutcomeWin, 12)
	require.NotZero(t, d)
	assert.Equal(t, 0.0, d+(-d))
}

func TestOutcomeFromScore(t *testing.T) {
	assert.Equal(t, rating.OutcomeWin, rating.OutcomeFromScore(2, 1))
	assert.Equal(t, rating.OutcomeLoss, rating.OutcomeFromScore(0, 2))
	assert.Equal(t, rating.OutcomeDraw, rating.OutcomeFromScore(1, 1))
}

func TestApplied(t *testing.T) {
	cfg := rating.DefaultConfig()
	s := cfg.InitialState()

	s = rating.Applied(s, 20, 2, 1)
	assert.Equal(t, 1020.0, s.Rating)
	assert.Equal(t, 1, s.MatchesPlayed)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 0, s.Losses)
	assert.Equal(t, 2, s.SetsWon)
	assert.Equal(t, 1, s.SetsLost)

	s = rating.Applied(s, -12.5, 1, 2)
	assert.Equal(t, 1007.5, s.Rating)
	assert.Equal(t, 2, s.MatchesPlayed)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 3, s.SetsWon)
	assert.Equal(t, 3, s.SetsLost)

	s = rating.Applied(s, 0, 1, 1)
	assert.Equal(t, 1, s.Draws)
}

func TestTeamHelpers(t *testing.T) {
	assert.Equal(t, 1100.0, rating.TeamRating(1000, 1200))
	assert.Equal(t, 3, rating.TeamExperience(7, 3))
	assert.Equal(t, 3, rating.TeamExperience(3, 7))
}

func TestInitialStateIsTheDocumentedDefault(t *testing.T) {
	cfg := rating.DefaultConfig()
	s := cfg.InitialState()
	assert.Equal(t, cfg.InitialRating, s.Rating)
	assert.Zero(t, s.MatchesPlayed)
	assert.Zero(t, s.Wins)
	assert.Zero(t, s.Losses)
	assert.Zero(t, s.Draws)
	assert.Zero(t, s.SetsWon)
	assert.Zero(t, s.SetsLost)
}
