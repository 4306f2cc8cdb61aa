// Package replay implements the deterministic recomputation of rating
// trajectories. A replay is pure: it starts from a baseline map, applies
// an ordered range of matches entirely in memory, and returns the result.
// It never reads or writes storage — persistence is the caller's separate
// final step, which is what guarantees that editing match N cannot
// perturb anything before N.
package replay

import (
	"errors"
	"fmt"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
)

// ErrDuplicateMatch reports the same match id appearing twice in one
// replay range. Double application would corrupt every downstream
// snapshot, so this is a fatal consistency defect, not a no-op.
var ErrDuplicateMatch = errors.New("duplicate match id in replay range")

// Record is the rating state of one participant immediately after one
// match. The edit controller persists one snapshot per record so that
// later edits can resolve intermediate baselines.
type Record struct {
	MatchID  string
	PlayerID string
	State    rating.State
}

// Result is the output of one replay call.
type Result struct {
	// Finals is the working map after the last match: the state each
	// touched player ends the range with.
	Finals map[string]rating.State
	// Records holds one entry per (match, participant) in replay order.
	Records []Record
}

// Run replays the given completed matches, in the order given, starting
// from baseline. All matches must belong to the given mode; the two
// rating families are updated by disjoint match sets and never mix in
// one replay. Participants missing from the baseline start from the
// documented initial state.
func Run(cfg rating.Config, mode rating.Mode, baseline map[string]rating.State, matches []*club.Match) (*Result, error) {
	// The working map is the only source of "current" state inside the
	// loop; the aggregate rows are never consulted here.
	working := make(map[string]rating.State, len(baseline))
	for playerID, state := range baseline {
		working[playerID] = state
	}

	seen := make(map[string]struct{}, len(matches))
	result := &Result{Finals: working}

	for _, match := range matches {
		if _, dup := seen[match.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMatch, match.ID)
		}
		seen[match.ID] = struct{}{}

		if match.Mode != mode {
			return nil, fmt.Errorf("match %s has mode %s, replay range is %s", match.ID, match.Mode, mode)
		}
		if match.Status != club.MatchCompleted {
			return nil, fmt.Errorf("match %s is not completed", match.ID)
		}
		if err := ValidateSides(match); err != nil {
			return nil, err
		}

		lookup := func(playerID string) rating.State {
			if state, ok := working[playerID]; ok {
				return state
			}
			return cfg.InitialState()
		}

		sideA := make([]rating.State, len(match.SideA))
		for i, playerID := range match.SideA {
			sideA[i] = lookup(playerID)
		}
		sideB := make([]rating.State, len(match.SideB))
		for i, playerID := range match.SideB {
			sideB[i] = lookup(playerID)
		}

		// One delta, computed from side A's perspective, applied as +d
		// and -d. Experience for the tier comes from the working map,
		// never from storage.
		delta := sideDelta(cfg, sideA, sideB, match.ScoreA, match.ScoreB)

		for i, playerID := range match.SideA {
			next := rating.Applied(sideA[i], delta, match.ScoreA, match.ScoreB)
			working[playerID] = next
			result.Records = append(result.Records, Record{MatchID: match.ID, PlayerID: playerID, State: next})
		}
		for i, playerID := range match.SideB {
			next := rating.Applied(sideB[i], -delta, match.ScoreB, match.ScoreA)
			working[playerID] = next
			result.Records = append(result.Records, Record{MatchID: match.ID, PlayerID: playerID, State: next})
		}
	}

	return result, nil
}

// ValidateSides checks the participant shape of a match: one player per
// side for singles, two per side for doubles, no player on both sides.
func ValidateSides(match *club.Match) error {
	perSide := 1
	if match.Mode == rating.ModeDoubles {
		perSide = 2
	}
	if len(match.SideA) != perSide || len(match.SideB) != perSide {
		return fmt.Errorf("match %s has malformed sides: %d vs %d players for mode %s",
			match.ID, len(match.SideA), len(match.SideB), match.Mode)
	}
	for _, a := range match.SideA {
		for _, b := range match.SideB {
			if a == b {
				return fmt.Errorf("match %s lists player %s on both sides", match.ID, a)
			}
		}
	}
	return nil
}

func sideDelta(cfg rating.Config, sideA, sideB []rating.State, scoreA, scoreB int) float64 {
	outcome := rating.OutcomeFromScore(scoreA, scoreB)
	if len(sideA) == 1 {
		return cfg.Delta(sideA[0].Rating, sideB[0].Rating, outcome, sideA[0].MatchesPlayed)
	}

	ratingsA := make([]float64, len(sideA))
	matchesA := make([]int, len(sideA))
	for i, s := range sideA {
		ratingsA[i] = s.Rating
		matchesA[i] = s.MatchesPlayed
	}
	ratingsB := make([]float64, len(sideB))
	for i, s := range sideB {
		ratingsB[i] = s.Rating
	}
	return cfg.Delta(rating.TeamRating(ratingsA...), rating.TeamRating(ratingsB...), outcome, rating.TeamExperience(matchesA...))
}
