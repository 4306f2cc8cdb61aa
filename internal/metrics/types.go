package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds the Prometheus collectors for the rating engine.
type Service struct {
	RecalcRuns         prometheus.Counter
	RecalcFailed       prometheus.Counter
	MatchesReplayed    prometheus.Counter
	ReplayDuration     prometheus.Histogram
	LockContention     prometheus.Counter
	IntegrityWarnings  prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// Metrics defines the instrumentation points the engine reports to.
type Metrics interface {
	IncRecalcRuns()
	IncRecalcFailed()
	AddMatchesReplayed(count int)
	ObserveReplayDuration(seconds float64)
	IncLockContention()
	IncIntegrityWarnings()
	SetStartupTime(seconds float64)
}
