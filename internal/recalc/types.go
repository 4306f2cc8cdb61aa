package recalc

import (
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/metrics"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/notifier"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/snapshot"
)

// Controller orchestrates rating recalculations. It is the only writer
// of snapshots and aggregate rows: the apply-new-match path and the
// historical-edit path both funnel through the same replay engine so the
// arithmetic can never diverge between them.
type Controller struct {
	store     club.ClubStore
	snapshots snapshot.SnapshotStore
	cfg       rating.Config
	metrics   metrics.Metrics
	notifier  notifier.Notifier
}

// FinalState is the recomputed rating state of one affected player,
// returned to the caller after a successful edit.
type FinalState struct {
	PlayerID string      `json:"player_id"`
	Mode     rating.Mode `json:"mode"`
	rating.State
}

// stage names for the per-edit state machine; used in logs and in
// PartialError to tell operators how far an edit got.
const (
	stageLocked      = "locked"
	stageInvalidated = "invalidated"
	stageReplaying   = "replaying"
	stagePersisted   = "persisted"
)
