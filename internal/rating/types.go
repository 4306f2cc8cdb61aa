package rating

// Mode selects which rating family a match updates. Singles and doubles
// ratings are fully independent: a player has one State per mode.
type Mode string

const (
	ModeSingles Mode = "SINGLES"
	ModeDoubles Mode = "DOUBLES"
)

// Outcome is the normalized score of one side of a match.
type Outcome float64

const (
	OutcomeWin  Outcome = 1
	OutcomeDraw Outcome = 0.5
	OutcomeLoss Outcome = 0
)

// State is the full rating state of one player in one mode. It is a value,
// not an entity: the stores copy it in and out, the replay engine mutates
// working copies of it, and nothing holds a shared pointer to it.
type State struct {
	Rating        float64 `json:"rating"`
	MatchesPlayed int     `json:"matches_played"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	SetsWon       int     `json:"sets_won"`
	SetsLost      int     `json:"sets_lost"`
}

// KTier maps an experience band to a volatility factor. A player with
// MatchesPlayed < MaxMatches uses K; the last tier has MaxMatches = 0 and
// acts as the catch-all for seasoned players.
type KTier struct {
	MaxMatches int
	K          float64
}
