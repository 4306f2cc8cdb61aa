// Package rating implements the Elo-style rating formula. Everything in
// here is a pure function of its inputs: no storage, no clocks, no
// globals. Both the first application of a match and every later replay
// of it go through the same code path, which is what makes recomputation
// reproducible.
package rating

import "math"

// Config holds the rating constants. These are configuration values, not
// derived ones: first-application and replay must use the identical
// Config or snapshots stop being reproducible.
type Config struct {
	// InitialRating is the rating assigned to a player with no history.
	InitialRating float64
	// Spread is the rating difference giving one player 10-to-1 odds.
	Spread float64
	// KTiers selects the volatility factor by experience. Ordered by
	// MaxMatches ascending, last entry is the catch-all (MaxMatches 0).
	KTiers []KTier
}

// DefaultConfig returns the club's standard constants: new players move
// fast (K=40 below 10 matches), regulars slower (K=32 below 30), and
// seasoned players slowest (K=24).
func DefaultConfig() Config {
	return Config{
		InitialRating: 1000,
		Spread:        400,
		KTiers: []KTier{
			{MaxMatches: 10, K: 40},
			{MaxMatches: 30, K: 32},
			{MaxMatches: 0, K: 24},
		},
	}
}

// InitialState is the documented default for a player with no prior
// history. Every call site that needs a baseline fallback must use this
// and nothing else.
func (c Config) InitialState() State {
	return State{Rating: c.InitialRating}
}

// KFor returns the volatility factor for a player with the given number
// of played matches.
func (c Config) KFor(matchesPlayed int) float64 {
	for _, tier := range c.KTiers {
		if tier.MaxMatches > 0 && matchesPlayed < tier.MaxMatches {
			return tier.K
		}
	}
	return c.KTiers[len(c.KTiers)-1].K
}

// Expected returns the logistic expected score of a player rated
// ratingSelf against an opponent rated ratingOpponent.
func (c Config) Expected(ratingSelf, ratingOpponent float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingOpponent-ratingSelf)/c.Spread))
}

// Delta computes the signed rating change for the side whose rating is
// ratingSelf. The opponent's change is the exact negation; callers apply
// +d and -d rather than calling Delta twice, so the pair is zero-sum by
// construction even though K depends only on the self side's experience.
func (c Config) Delta(ratingSelf, ratingOpponent float64, outcome Outcome, matchesPlayedSelf int) float64 {
	k := c.KFor(matchesPlayedSelf)
	expected := c.Expected(ratingSelf, ratingOpponent)
	return c.round(k * (float64(outcome) - expected))
}

// TeamRating is the rating of a side in a doubles match: the arithmetic
// mean of its members' ratings.
func TeamRating(ratings ...float64) float64 {
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

// TeamExperience is the experience used to pick a doubles side's K tier:
// the side moves at the volatility of its least experienced member.
func TeamExperience(matchesPlayed ...int) int {
	min := matchesPlayed[0]
	for _, m := range matchesPlayed[1:] {
		if m < min {
			min = m
		}
	}
	return min
}

// OutcomeFromScore maps a score pair to the outcome for the side that
// scored scoreSelf.
func OutcomeFromScore(scoreSelf, scoreOpponent int) Outcome {
	switch {
	case scoreSelf > scoreOpponent:
		return OutcomeWin
	case scoreSelf < scoreOpponent:
		return OutcomeLoss
	default:
		return OutcomeDraw
	}
}

// Applied returns a copy of s advanced by one match: rating shifted by
// delta, matches played incremented, outcome and set counters updated
// from the score pair.
func Applied(s State, delta float64, scoreSelf, scoreOpponent int) State {
	s.Rating += delta
	s.MatchesPlayed++
	switch OutcomeFromScore(scoreSelf, scoreOpponent) {
	case OutcomeWin:
		s.Wins++
	case OutcomeLoss:
		s.Losses++
	default:
		s.Draws++
	}
	s.SetsWon += scoreSelf
	s.SetsLost += scoreOpponent
	return s
}

// round is the single rounding rule for deltas: half away from zero, one
// decimal place. It lives in exactly one place so first application and
// replay can never diverge.
func (c Config) round(d float64) float64 {
	return math.Round(d*10) / 10
}
