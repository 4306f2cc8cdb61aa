package snapshot

import "github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"

// SnapshotStore is the append-only history of rating states. Snapshots
// are immutable once written: the only mutations are the idempotent
// upsert keyed by (match, player) and the forward invalidation performed
// by the edit controller.
type SnapshotStore interface {
	// Write upserts the snapshot for one (match, player) pair.
	Write(entry Entry) error
	// Get returns the snapshot for one (match, player) pair.
	Get(matchID, playerID string) (rating.State, bool, error)
	// Before returns the player's snapshot at the most recent match
	// strictly earlier than the given match in global chronological
	// order. The boolean reports whether any such snapshot exists.
	Before(playerID, matchID string, mode rating.Mode) (rating.State, bool, error)
	// SessionBaseline returns the player's snapshot at their most
	// recent match in any session strictly before the given session.
	// The boolean reports whether the player has prior history; the
	// caller falls back to rating.Config.InitialState when it is false.
	SessionBaseline(playerID, sessionID string, mode rating.Mode) (rating.State, bool, error)
	// InvalidateFrom deletes every snapshot and audit record of one
	// rating family for the session's matches at or after the given
	// ordinal position and returns the number of deleted snapshots.
	InvalidateFrom(sessionID string, mode rating.Mode, round, slot int) (int64, error)
	// CountForSession returns the number of snapshots currently stored
	// for a session's matches.
	CountForSession(sessionID string) (int64, error)
	// PersistReplay writes one replay's output as a single batch: every
	// per-match snapshot, the parallel audit records, and the aggregate
	// rating rows, in one transaction so concurrent readers observe
	// either the pre-edit or post-edit state, never a torn one.
	PersistReplay(mode rating.Mode, entries []Entry, finals map[string]rating.State) error
}
