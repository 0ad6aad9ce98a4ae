package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jthomisee/changing-500/internal/standings"
	"github.com/jthomisee/changing-500/internal/store"
)

// handleStandings computes the group's ranked season table on demand.
// Nothing is cached: every request folds the group's games from scratch.
func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if user, _ := s.requireMember(w, r, groupID); user == nil {
		return
	}

	games, err := s.store.ListGroupGames(r.Context(), groupID)
	if err != nil {
		serverError(w, err)
		return
	}

	stats := standings.Accumulate(toEngineGames(games))
	ranked := standings.Rank(stats)

	// Label entries with roster display names before any name sort runs.
	members, err := s.store.ListMembers(r.Context(), groupID)
	if err != nil {
		serverError(w, err)
		return
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.Name
	}
	for i := range ranked {
		if name, ok := names[ranked[i].UserID]; ok {
			ranked[i].Name = name
		} else {
			ranked[i].Name = ranked[i].UserID
		}
	}

	// Optional display sort; rank values are already fixed by points.
	if field := r.URL.Query().Get("sort"); field != "" {
		dir := standings.Ascending
		if r.URL.Query().Get("dir") == "desc" {
			dir = standings.Descending
		}
		standings.SortBy(ranked, field, dir)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"standings": ranked})
}

// toEngineGames converts stored games into the standings engine's types.
func toEngineGames(games []store.Game) []standings.Game {
	converted := make([]standings.Game, 0, len(games))
	for _, g := range games {
		eg := standings.Game{
			ID:      g.ID,
			GroupID: g.GroupID,
			Date:    g.Date,
			Status:  standings.GameStatus(g.Status),
			Buyin:   g.Buyin,
			Results: make([]standings.Result, 0, len(g.Results)),
		}
		for _, r := range g.Results {
			eg.Results = append(eg.Results, standings.Result{
				UserID:              r.UserID,
				Position:            r.Position,
				Winnings:            r.Winnings,
				Rebuys:              r.Rebuys,
				BestHandParticipant: r.BestHandParticipant,
				BestHandWinner:      r.BestHandWinner,
			})
		}
		converted = append(converted, eg)
	}
	return converted
}
