package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RecalcRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rating_recalc_runs_total",
			Help: "The total number of recalculation runs (apply or edit).",
		}),
		RecalcFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rating_recalc_failed_total",
			Help: "The total number of recalculation runs that failed.",
		}),
		MatchesReplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rating_matches_replayed_total",
			Help: "The total number of matches processed by the replay engine.",
		}),
		ReplayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rating_replay_duration_seconds",
			Help:    "The duration of individual replay runs.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LockContention: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rating_session_lock_contention_total",
			Help: "The total number of edits rejected because the session lock was held.",
		}),
		IntegrityWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rating_integrity_warnings_total",
			Help: "The total number of computed-vs-persisted mismatches detected after a write.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rating_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RecalcRuns,
		s.RecalcFailed,
		s.MatchesReplayed,
		s.ReplayDuration,
		s.LockContention,
		s.IntegrityWarnings,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRecalcRuns() {
	s.RecalcRuns.Inc()
}

func (s *Service) IncRecalcFailed() {
	s.RecalcFailed.Inc()
}

func (s *Service) AddMatchesReplayed(count int) {
	s.MatchesReplayed.Add(float64(count))
}

func (s *Service) ObserveReplayDuration(seconds float64) {
	s.ReplayDuration.Observe(seconds)
}

func (s *Service) IncLockContention() {
	s.LockContention.Inc()
}

func (s *Service) IncIntegrityWarnings() {
	s.IntegrityWarnings.Inc()
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
