package recalc

import (
	"errors"
	"fmt"
)

// Validation errors: rejected before any mutation.
var (
	// ErrUnsupportedMode rejects edits of match modes the controller
	// cannot safely replay. Only singles edits are supported; a doubles
	// edit is refused outright rather than mis-replayed.
	ErrUnsupportedMode = errors.New("editing this match mode is not supported")
	// ErrMatchNotCompleted rejects operations on matches without a
	// recorded score.
	ErrMatchNotCompleted = errors.New("match has no recorded score")
)

// ErrLockHeld is the concurrency rejection: another recalculation owns
// the session lock. The caller may retry later; requests are never
// queued.
var ErrLockHeld = errors.New("session lock is held by another recalculation")

// PartialError reports a recalculation that failed after forward
// snapshots were invalidated but before the replacement batch was
// persisted. The session is flagged NEEDS_RERUN: everything before the
// edited match is intact, and re-running the same edit is the safe,
// idempotent recovery.
type PartialError struct {
	SessionID string
	MatchID   string
	Stage     string
	Err       error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("recalculation failed during %s for session %s: %v; no changes were made to ratings before the edited match, re-run the edit to recover", e.Stage, e.SessionID, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}
