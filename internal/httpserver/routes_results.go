package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/docombos/docombos/apps/go-server/internal/results"
)

// mountResults registers /results routes.
func (s *Server) mountResults(r chi.Router) {
	r.Route("/results", func(r chi.Router) {
		r.Get("/recent", s.handleRecentResults)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// limitParam reads ?limit=, clamped to 1..100 with a default of 20.
func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return 20
	}
	return min(n, 100)
}

func (s *Server) handleRecentResults(w http.ResponseWriter, r *http.Request) {
	rows, err := s.results.Recent(r.Context(), limitParam(r))
	if err != nil {
		log.Error().Err(err).Msg("recent results")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.results.Leaderboard(r.Context(), limitParam(r))
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []results.LBRow{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"top": rows})
}
