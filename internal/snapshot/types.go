package snapshot

import (
	"database/sql"
	"sync"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
)

// store handles all database operations for rating snapshots and the
// parallel audit history.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Entry is one snapshot record: the rating state of one player
// immediately after one match.
type Entry struct {
	MatchID  string       `json:"match_id"`
	PlayerID string       `json:"player_id"`
	Mode     rating.Mode  `json:"mode"`
	State    rating.State `json:"state"`
}

// auditRecord is the msgpack payload stored in rating_history alongside
// every snapshot write.
type auditRecord struct {
	MatchID    string       `msgpack:"match_id"`
	PlayerID   string       `msgpack:"player_id"`
	Mode       rating.Mode  `msgpack:"mode"`
	State      rating.State `msgpack:"state"`
	RecordedAt int64        `msgpack:"recorded_at"`
}
