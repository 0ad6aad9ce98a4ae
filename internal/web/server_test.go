package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jthomisee/changing-500/internal/auth"
	"github.com/jthomisee/changing-500/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tokens := auth.NewTokenManager("test-secret")
	return NewServer(st, tokens, nil, nil, Config{AllowedOrigins: []string{"*"}})
}

func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// register creates an account and returns (userID, token).
func register(t *testing.T, s *Server, email, name string) (string, string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"email": email, "name": name, "password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		User  struct{ ID string }
		Token string
	}
	decode(t, rec, &resp)
	return resp.User.ID, resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	register(t, s, "alice@example.com", "Alice")

	rec := doJSON(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status %d, want 401", rec.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	s := newTestServer(t)
	if rec := doJSON(t, s, http.MethodGet, "/api/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /api/me: status %d, want 401", rec.Code)
	}
}

// setupGroup registers three players and returns their IDs, the owner's
// token, and the group ID.
func setupGroup(t *testing.T, s *Server) (ids [3]string, ownerToken, groupID string) {
	t.Helper()
	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	names := []string{"Alice", "Bob", "Carol"}
	tokens := [3]string{}
	for i := range emails {
		ids[i], tokens[i] = register(t, s, emails[i], names[i])
	}
	ownerToken = tokens[0]

	rec := doJSON(t, s, http.MethodPost, "/api/groups", ownerToken, map[string]string{"name": "Thursday Night"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group: status %d, body %s", rec.Code, rec.Body.String())
	}
	var group struct{ ID string }
	decode(t, rec, &group)
	groupID = group.ID

	for _, email := range emails[1:] {
		rec := doJSON(t, s, http.MethodPost, "/api/groups/"+groupID+"/members", ownerToken,
			map[string]string{"email": email})
		if rec.Code != http.StatusCreated {
			t.Fatalf("add member %s: status %d, body %s", email, rec.Code, rec.Body.String())
		}
	}
	return ids, ownerToken, groupID
}

func TestStandingsEndToEnd(t *testing.T) {
	s := newTestServer(t)
	ids, ownerToken, groupID := setupGroup(t, s)

	games := []map[string]interface{}{
		{
			"date": "2025-03-01", "status": "completed",
			"results": []map[string]interface{}{
				{"userId": ids[0], "position": 1, "winnings": 200},
				{"userId": ids[1], "position": 2, "winnings": 50},
				{"userId": ids[2], "position": 3},
			},
		},
		{
			"date": "2025-03-08", "status": "completed",
			"results": []map[string]interface{}{
				{"userId": ids[0], "position": 1, "winnings": 100},
				{"userId": ids[1], "position": 1, "winnings": 100},
				{"userId": ids[2], "position": 3},
			},
		},
	}
	for _, g := range games {
		rec := doJSON(t, s, http.MethodPost, "/api/groups/"+groupID+"/games", ownerToken, g)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create game: status %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, s, http.MethodGet, "/api/groups/"+groupID+"/standings", ownerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("standings: status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Standings []struct {
			UserID      string  `json:"userId"`
			Name        string  `json:"name"`
			Rank        int     `json:"rank"`
			Points      float64 `json:"points"`
			Games       int     `json:"games"`
			NetWinnings float64 `json:"netWinnings"`
		} `json:"standings"`
	}
	decode(t, rec, &resp)

	if len(resp.Standings) != 3 {
		t.Fatalf("got %d standings entries, want 3", len(resp.Standings))
	}

	top := resp.Standings[0]
	if top.UserID != ids[0] || top.Rank != 1 || top.Points != 3.0 {
		t.Errorf("top entry = %+v, want Alice rank 1 with 3 points", top)
	}
	if top.Name != "Alice" {
		t.Errorf("top entry name = %q, want Alice (roster label)", top.Name)
	}
	if resp.Standings[1].Points != 2.0 || resp.Standings[1].Rank != 2 {
		t.Errorf("second entry = %+v, want 2 points rank 2", resp.Standings[1])
	}
	if resp.Standings[2].Points != 0 || resp.Standings[2].Rank != 3 {
		t.Errorf("third entry = %+v, want 0 points rank 3", resp.Standings[2])
	}
	for _, e := range resp.Standings {
		if e.Games != 2 {
			t.Errorf("%s games = %d, want 2", e.Name, e.Games)
		}
	}

	// Display sort by name must not disturb rank values.
	rec = doJSON(t, s, http.MethodGet, "/api/groups/"+groupID+"/standings?sort=name&dir=asc", ownerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sorted standings: status %d", rec.Code)
	}
	decode(t, rec, &resp)
	if resp.Standings[0].Name != "Alice" || resp.Standings[1].Name != "Bob" || resp.Standings[2].Name != "Carol" {
		t.Errorf("name sort order wrong: %+v", resp.Standings)
	}
	if resp.Standings[0].Rank != 1 || resp.Standings[1].Rank != 2 || resp.Standings[2].Rank != 3 {
		t.Errorf("name sort changed rank values: %+v", resp.Standings)
	}
}

func TestStandingsExcludesScheduledGames(t *testing.T) {
	s := newTestServer(t)
	ids, ownerToken, groupID := setupGroup(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/groups/"+groupID+"/games", ownerToken,
		map[string]interface{}{
			"date": "2030-01-01", "time": "19:30", "status": "scheduled",
			"results": []map[string]interface{}{
				{"userId": ids[0], "rsvpStatus": "in"},
			},
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create scheduled game: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/groups/"+groupID+"/standings", ownerToken, nil)
	var resp struct {
		Standings []struct{ UserID string }
	}
	decode(t, rec, &resp)
	if len(resp.Standings) != 0 {
		t.Errorf("scheduled-only group produced %d standings entries", len(resp.Standings))
	}
}

func TestGroupAccessControl(t *testing.T) {
	s := newTestServer(t)
	_, ownerToken, groupID := setupGroup(t, s)

	_, outsiderToken := register(t, s, "outsider@example.com", "Mallory")

	rec := doJSON(t, s, http.MethodGet, "/api/groups/"+groupID+"/standings", outsiderToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider standings access: status %d, want 403", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/groups/"+groupID, outsiderToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider group delete: status %d, want 403", rec.Code)
	}

	// Non-owner member cannot add members.
	_, memberToken := register(t, s, "late@example.com", "Dave")
	rec = doJSON(t, s, http.MethodPost, "/api/groups/"+groupID+"/members", ownerToken,
		map[string]string{"email": "late@example.com"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member: status %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPost, "/api/groups/"+groupID+"/members", memberToken,
		map[string]string{"email": "outsider@example.com"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("member adding member: status %d, want 403", rec.Code)
	}
}

func TestRSVPFlow(t *testing.T) {
	s := newTestServer(t)
	ids, ownerToken, groupID := setupGroup(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/groups/"+groupID+"/games", ownerToken,
		map[string]interface{}{"date": "2030-01-01", "status": "scheduled"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create scheduled game: status %d, body %s", rec.Code, rec.Body.String())
	}
	var game struct{ ID string }
	decode(t, rec, &game)

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/games/%s/rsvp", game.ID), ownerToken,
		map[string]string{"status": "in"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("rsvp: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/games/%s/rsvp", game.ID), ownerToken,
		map[string]string{"status": "sometimes"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid rsvp status accepted: %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/games/"+game.ID, ownerToken, nil)
	var got struct {
		Results []struct {
			UserID     string `json:"userId"`
			RSVPStatus string `json:"rsvpStatus"`
		} `json:"results"`
	}
	decode(t, rec, &got)
	if len(got.Results) != 1 || got.Results[0].UserID != ids[0] || got.Results[0].RSVPStatus != "in" {
		t.Errorf("rsvp round-trip returned %+v", got.Results)
	}
}

func TestGameValidation(t *testing.T) {
	s := newTestServer(t)
	ids, ownerToken, groupID := setupGroup(t, s)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"bad status", map[string]interface{}{"date": "2025-03-01", "status": "done"}},
		{"bad date", map[string]interface{}{"date": "03/01/2025", "status": "completed"}},
		{"duplicate player", map[string]interface{}{
			"date": "2025-03-01", "status": "completed",
			"results": []map[string]interface{}{
				{"userId": ids[0], "position": 1},
				{"userId": ids[0], "position": 2},
			},
		}},
		{"missing position", map[string]interface{}{
			"date": "2025-03-01", "status": "completed",
			"results": []map[string]interface{}{
				{"userId": ids[0]},
			},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/groups/"+groupID+"/games", ownerToken, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUpdateKeepsBuyinWhenOmitted(t *testing.T) {
	s := newTestServer(t)
	ids, ownerToken, groupID := setupGroup(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/groups/"+groupID+"/games", ownerToken,
		map[string]interface{}{
			"date": "2025-02-01", "status": "completed", "buyin": 50,
			"results": []map[string]interface{}{
				{"userId": ids[0], "position": 1},
				{"userId": ids[1], "position": 2},
			},
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game: status %d, body %s", rec.Code, rec.Body.String())
	}
	var game struct {
		ID    string  `json:"id"`
		Buyin float64 `json:"buyin"`
	}
	decode(t, rec, &game)
	if game.Buyin != 50 {
		t.Fatalf("created buyin = %v, want 50", game.Buyin)
	}

	// A PUT that only touches results must not reset a custom stake.
	rec = doJSON(t, s, http.MethodPut, "/api/games/"+game.ID, ownerToken,
		map[string]interface{}{
			"date": "2025-02-01", "status": "completed",
			"results": []map[string]interface{}{
				{"userId": ids[0], "position": 2},
				{"userId": ids[1], "position": 1},
			},
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("update game: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/games/"+game.ID, ownerToken, nil)
	var got struct {
		Buyin float64 `json:"buyin"`
	}
	decode(t, rec, &got)
	if got.Buyin != 50 {
		t.Errorf("buyin after update = %v, want 50", got.Buyin)
	}
}
