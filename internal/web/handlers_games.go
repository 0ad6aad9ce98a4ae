package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jthomisee/changing-500/internal/standings"
	"github.com/jthomisee/changing-500/internal/store"
)

type resultPayload struct {
	UserID              string  `json:"userId"`
	Position            int     `json:"position"`
	Winnings            float64 `json:"winnings"`
	Rebuys              int     `json:"rebuys"`
	BestHandParticipant bool    `json:"bestHandParticipant"`
	BestHandWinner      bool    `json:"bestHandWinner"`
	RSVPStatus          string  `json:"rsvpStatus,omitempty"`
}

type gameRequest struct {
	Date    string          `json:"date"`           // "2006-01-02"
	Time    string          `json:"time,omitempty"` // "15:04", optional
	Status  string          `json:"status"`
	Buyin   float64         `json:"buyin,omitempty"`
	Results []resultPayload `json:"results"`
}

type gameResponse struct {
	ID      string          `json:"id"`
	GroupID string          `json:"groupId"`
	Date    time.Time       `json:"date"`
	Status  string          `json:"status"`
	Buyin   float64         `json:"buyin"`
	Results []resultPayload `json:"results"`
}

func toGameResponse(g *store.Game) gameResponse {
	resp := gameResponse{
		ID:      g.ID,
		GroupID: g.GroupID,
		Date:    g.Date,
		Status:  g.Status,
		Buyin:   g.Buyin,
		Results: make([]resultPayload, 0, len(g.Results)),
	}
	for _, r := range g.Results {
		resp.Results = append(resp.Results, resultPayload{
			UserID:              r.UserID,
			Position:            r.Position,
			Winnings:            r.Winnings,
			Rebuys:              r.Rebuys,
			BestHandParticipant: r.BestHandParticipant,
			BestHandWinner:      r.BestHandWinner,
			RSVPStatus:          r.RSVPStatus,
		})
	}
	return resp
}

// parseGameDate combines the date and optional time fields into a single
// UTC timestamp, defaulting the time of day to midnight.
func parseGameDate(date, timeOfDay string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD")
	}
	if timeOfDay == "" {
		return d, nil
	}
	t, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("time must be HH:MM")
	}
	return d.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

func (req *gameRequest) validate() (time.Time, []store.GameResult, error) {
	if req.Status != string(standings.StatusScheduled) && req.Status != string(standings.StatusCompleted) {
		return time.Time{}, nil, fmt.Errorf("status must be scheduled or completed")
	}

	date, err := parseGameDate(req.Date, req.Time)
	if err != nil {
		return time.Time{}, nil, err
	}

	seen := make(map[string]bool)
	results := make([]store.GameResult, 0, len(req.Results))
	for _, r := range req.Results {
		if r.UserID == "" {
			return time.Time{}, nil, fmt.Errorf("every result needs a userId")
		}
		if seen[r.UserID] {
			return time.Time{}, nil, fmt.Errorf("duplicate result for user %s", r.UserID)
		}
		seen[r.UserID] = true

		if req.Status == string(standings.StatusCompleted) && r.Position < 1 {
			return time.Time{}, nil, fmt.Errorf("completed games need a position of at least 1 for every player")
		}
		if r.Rebuys < 0 {
			return time.Time{}, nil, fmt.Errorf("rebuys cannot be negative")
		}

		results = append(results, store.GameResult{
			UserID:              r.UserID,
			Position:            r.Position,
			Winnings:            r.Winnings,
			Rebuys:              r.Rebuys,
			BestHandParticipant: r.BestHandParticipant,
			BestHandWinner:      r.BestHandWinner,
			RSVPStatus:          r.RSVPStatus,
		})
	}

	return date, results, nil
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if user, _ := s.requireMember(w, r, groupID); user == nil {
		return
	}

	var req gameRequest
	if err := readJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, results, err := req.validate()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	buyin := req.Buyin
	if buyin <= 0 {
		buyin = standings.DefaultBuyin
	}

	now := time.Now().UTC()
	game := &store.Game{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Date:      date,
		Status:    req.Status,
		Buyin:     buyin,
		CreatedAt: now,
		UpdatedAt: now,
		Results:   results,
	}
	if err := s.store.CreateGame(r.Context(), game); err != nil {
		serverError(w, err)
		return
	}

	if game.Status == string(standings.StatusCompleted) && s.notifier != nil {
		s.notifier.ResultsPosted(r.Context(), game)
	}

	writeJSON(w, http.StatusCreated, toGameResponse(game))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if user, _ := s.requireMember(w, r, groupID); user == nil {
		return
	}

	games, err := s.store.ListGroupGames(r.Context(), groupID)
	if err != nil {
		serverError(w, err)
		return
	}

	resp := make([]gameResponse, 0, len(games))
	for i := range games {
		resp = append(resp, toGameResponse(&games[i]))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"games": resp})
}

// loadMemberGame fetches a game and checks the caller belongs to the owning
// group. On failure it writes the error response and returns nil.
func (s *Server) loadMemberGame(w http.ResponseWriter, r *http.Request) *store.Game {
	gameID := chi.URLParam(r, "gameID")

	game, err := s.store.GetGame(r.Context(), gameID)
	if err != nil {
		serverError(w, err)
		return nil
	}
	if game == nil {
		errorJSON(w, http.StatusNotFound, "game not found")
		return nil
	}

	if user, _ := s.requireMember(w, r, game.GroupID); user == nil {
		return nil
	}
	return game
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game := s.loadMemberGame(w, r)
	if game == nil {
		return
	}
	writeJSON(w, http.StatusOK, toGameResponse(game))
}

func (s *Server) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	game := s.loadMemberGame(w, r)
	if game == nil {
		return
	}

	var req gameRequest
	if err := readJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, results, err := req.validate()
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	completing := game.Status != string(standings.StatusCompleted) &&
		req.Status == string(standings.StatusCompleted)

	game.Date = date
	game.Status = req.Status
	if req.Buyin > 0 {
		game.Buyin = req.Buyin
	}
	game.Results = results

	if err := s.store.UpdateGame(r.Context(), game); err != nil {
		serverError(w, err)
		return
	}

	if completing && s.notifier != nil {
		s.notifier.ResultsPosted(r.Context(), game)
	}

	writeJSON(w, http.StatusOK, toGameResponse(game))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	game := s.loadMemberGame(w, r)
	if game == nil {
		return
	}

	if err := s.store.DeleteGame(r.Context(), game.ID); err != nil {
		serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRSVP(w http.ResponseWriter, r *http.Request) {
	game := s.loadMemberGame(w, r)
	if game == nil {
		return
	}
	if game.Status != string(standings.StatusScheduled) {
		errorJSON(w, http.StatusBadRequest, "can only RSVP to scheduled games")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Status {
	case "in", "out", "maybe":
	default:
		errorJSON(w, http.StatusBadRequest, "status must be in, out, or maybe")
		return
	}

	user := s.mustUser(w, r)
	if user == nil {
		return
	}
	if err := s.store.SetRSVP(r.Context(), game.ID, user.ID, req.Status); err != nil {
		serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
