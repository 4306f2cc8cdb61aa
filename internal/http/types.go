package http

import (
	"net/http"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/config"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/metrics"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/recalc"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/views"
)

type Server struct {
	Store          club.ClubStore
	Controller     *recalc.Controller
	Views          *views.Views
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}

type editMatchRequest struct {
	MatchID string `json:"match_id"`
	ScoreA  int    `json:"score_a"`
	ScoreB  int    `json:"score_b"`
}

type errorResponse struct {
	Error          string `json:"error"`
	NeedsManualRun bool   `json:"needs_manual_rerun,omitempty"`
}
