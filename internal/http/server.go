package http

import (
	"net/http"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/config"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/metrics"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/recalc"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/views"
)

func NewServer(store club.ClubStore, controller *recalc.Controller, viewsSvc *views.Views, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		Store:          store,
		Controller:     controller,
		Views:          viewsSvc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/members", Chain(s.ListMembersHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/apply-match", Chain(s.ApplyMatchHandler(), paramsMiddleware))
	s.Router.Handle("/edit-match", Chain(s.EditMatchHandler(), paramsMiddleware))
	s.Router.Handle("/session-summary", Chain(s.SessionSummaryHandler(), paramsMiddleware))
	s.Router.Handle("/rank-movements", Chain(s.RankMovementsHandler(), paramsMiddleware))
	s.Router.Handle("/unlock-session", Chain(s.UnlockSessionHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
