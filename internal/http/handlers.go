package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/club"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"
	"github.com/ivantomicic/gweilo-elo-new-sub002/internal/recalc"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			log.Error("Failed to list players", "error", err)
			http.Error(w, "Failed to list players", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			http.Error(w, "session_id is required", http.StatusBadRequest)
			return
		}
		matches, err := s.Store.SessionMatches(sessionID)
		if err != nil {
			log.Error("Failed to list session matches", "error", err, "sessionID", sessionID)
			http.Error(w, "Failed to list matches", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := modeFromQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		board, err := s.Store.Leaderboard(mode)
		if err != nil {
			log.Error("Failed to load leaderboard", "error", err, "mode", mode)
			http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, board)
	}
}

// ApplyMatchHandler triggers the rating application for a match whose
// score has just been recorded.
func (s *Server) ApplyMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("match_id")
		if matchID == "" {
			http.Error(w, "match_id is required", http.StatusBadRequest)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would apply match", "matchID", matchID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "[Dry Run] Would apply match %s", matchID)
			return
		}
		if err := s.Controller.ApplyMatch(matchID); err != nil {
			s.respondRecalcError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Applied match %s", matchID)
	}
}

// EditMatchHandler runs the full edit flow for a historical match and
// returns the recomputed state of every affected player.
func (s *Server) EditMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req editMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.MatchID == "" {
			http.Error(w, "match_id is required", http.StatusBadRequest)
			return
		}
		if req.ScoreA < 0 || req.ScoreB < 0 {
			http.Error(w, "scores must be non-negative", http.StatusBadRequest)
			return
		}

		finals, err := s.Controller.EditMatch(req.MatchID, req.ScoreA, req.ScoreB)
		if err != nil {
			s.respondRecalcError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, finals)
	}
}

func (s *Server) SessionSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			http.Error(w, "session_id is required", http.StatusBadRequest)
			return
		}
		summary, err := s.Views.SessionSummary(sessionID)
		if err != nil {
			if errors.Is(err, club.ErrSessionNotFound) {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to compute session summary", "error", err, "sessionID", sessionID)
			http.Error(w, "Failed to compute session summary", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, summary)
	}
}

func (s *Server) RankMovementsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := modeFromQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rawIDs := r.URL.Query().Get("player_ids")
		if rawIDs == "" {
			http.Error(w, "player_ids is required", http.StatusBadRequest)
			return
		}
		playerIDs := strings.Split(rawIDs, ",")

		movements, err := s.Views.RankMovements(playerIDs, mode)
		if err != nil {
			log.Error("Failed to compute rank movements", "error", err)
			http.Error(w, "Failed to compute rank movements", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, movements)
	}
}

// UnlockSessionHandler is the stuck-lock recovery endpoint: it clears a
// session's recalculation lock unconditionally.
func (s *Server) UnlockSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			http.Error(w, "session_id is required", http.StatusBadRequest)
			return
		}
		if err := s.Store.ForceUnlockSession(sessionID); err != nil {
			if errors.Is(err, club.ErrSessionNotFound) {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to force-unlock session", "error", err, "sessionID", sessionID)
			http.Error(w, "Failed to unlock session", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Unlocked session %s", sessionID)
	}
}

// respondRecalcError maps the controller's error taxonomy onto HTTP
// statuses: validation 400, lock contention 409, partial failures 500
// with the manual re-run flag set.
func (s *Server) respondRecalcError(w http.ResponseWriter, err error) {
	var partial *recalc.PartialError
	switch {
	case errors.Is(err, recalc.ErrUnsupportedMode), errors.Is(err, recalc.ErrMatchNotCompleted):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, recalc.ErrLockHeld):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &partial):
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: partial.Error(), NeedsManualRun: true})
	default:
		log.Error("Recalculation failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "recalculation failed, no changes were made to ratings before the edited match"})
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func modeFromQuery(r *http.Request) (rating.Mode, error) {
	switch strings.ToUpper(r.URL.Query().Get("mode")) {
	case "", "SINGLES":
		return rating.ModeSingles, nil
	case "DOUBLES":
		return rating.ModeDoubles, nil
	default:
		return "", fmt.Errorf("unknown mode %q", r.URL.Query().Get("mode"))
	}
}
