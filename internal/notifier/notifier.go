// Package notifier is the seam to the club's (out-of-scope) delivery
// channels. The engine only reports two administrative events; actual
// delivery lives outside this service.
package notifier

import "github.com/charmbracelet/log"

// Notifier receives administrative notices from the rating engine.
type Notifier interface {
	// IntegrityWarning reports a computed-vs-persisted mismatch found
	// after a successful write. The persisted value stays authoritative.
	IntegrityWarning(sessionID, matchID, detail string)
	// ManualRerunRequired reports a session left partially invalidated
	// by a failed recalculation. Re-running the same edit is the
	// recovery action.
	ManualRerunRequired(sessionID, matchID, reason string)
}

// logNotifier writes notices to the application log. It is the default
// implementation wired in the server binary.
type logNotifier struct{}

// NewLog creates a Notifier backed by the application log.
func NewLog() Notifier {
	return logNotifier{}
}

func (logNotifier) IntegrityWarning(sessionID, matchID, detail string) {
	log.Warn("Rating integrity warning", "sessionID", sessionID, "matchID", matchID, "detail", detail)
}

func (logNotifier) ManualRerunRequired(sessionID, matchID, reason string) {
	log.Error("Session flagged for manual re-run", "sessionID", sessionID, "matchID", matchID, "reason", reason)
}
