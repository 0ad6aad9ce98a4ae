package standings

import (
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2025, time.March, n, 19, 0, 0, 0, time.UTC)
}

func completedGame(date time.Time, results ...Result) Game {
	return Game{Status: StatusCompleted, Date: date, Results: results}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAccumulateTwoGameScenario(t *testing.T) {
	games := []Game{
		// Game 1, no ties.
		completedGame(day(1),
			Result{UserID: "A", Position: 1, Winnings: 200},
			Result{UserID: "B", Position: 2, Winnings: 50},
			Result{UserID: "C", Position: 3},
		),
		// Game 2, A and B tied for first.
		completedGame(day(8),
			Result{UserID: "A", Position: 1, Winnings: 100},
			Result{UserID: "B", Position: 1, Winnings: 100},
			Result{UserID: "C", Position: 3},
		),
	}

	stats := Accumulate(games)
	if len(stats) != 3 {
		t.Fatalf("got %d players, want 3", len(stats))
	}

	a, b, c := stats["A"], stats["B"], stats["C"]

	if !almostEqual(a.Points, 3.0) || !almostEqual(b.Points, 2.0) || !almostEqual(c.Points, 0) {
		t.Errorf("points = %v/%v/%v, want 3/2/0", a.Points, b.Points, c.Points)
	}
	for _, ps := range []*PlayerStats{a, b, c} {
		if ps.Games != 2 {
			t.Errorf("player %s: games = %d, want 2", ps.UserID, ps.Games)
		}
		if !almostEqual(ps.TotalBuyins, 40) {
			t.Errorf("player %s: totalBuyins = %v, want 40", ps.UserID, ps.TotalBuyins)
		}
	}
	if !almostEqual(a.NetWinnings, 260) {
		t.Errorf("A netWinnings = %v, want 260", a.NetWinnings)
	}
	if !almostEqual(b.NetWinnings, 110) {
		t.Errorf("B netWinnings = %v, want 110", b.NetWinnings)
	}
	if !almostEqual(c.NetWinnings, -40) {
		t.Errorf("C netWinnings = %v, want -40", c.NetWinnings)
	}
	if a.Wins != 2 || b.Wins != 1 || c.Wins != 0 {
		t.Errorf("wins = %d/%d/%d, want 2/1/0", a.Wins, b.Wins, c.Wins)
	}
	if !almostEqual(a.WinRate, 100) || !almostEqual(b.WinRate, 50) || !almostEqual(c.WinRate, 0) {
		t.Errorf("winRate = %v/%v/%v, want 100/50/0", a.WinRate, b.WinRate, c.WinRate)
	}
	if !almostEqual(c.AvgPosition, 3) {
		t.Errorf("C avgPosition = %v, want 3", c.AvgPosition)
	}
}

func TestAccumulateSkipsScheduledGames(t *testing.T) {
	games := []Game{
		completedGame(day(1), Result{UserID: "A", Position: 1}, Result{UserID: "B", Position: 2}),
		{
			Status: StatusScheduled,
			Date:   day(15),
			Results: []Result{
				{UserID: "A", Position: 1, Winnings: 999},
				{UserID: "D", Position: 2},
			},
		},
	}

	stats := Accumulate(games)
	if _, ok := stats["D"]; ok {
		t.Error("player from a scheduled game appeared in standings")
	}
	if stats["A"].Games != 1 {
		t.Errorf("A games = %d, want 1 (scheduled game counted)", stats["A"].Games)
	}
	if !almostEqual(stats["A"].Winnings, 0) {
		t.Errorf("A winnings = %v, want 0", stats["A"].Winnings)
	}
}

func TestAccumulateZeroGamesPlayerAbsent(t *testing.T) {
	stats := Accumulate([]Game{
		completedGame(day(1), Result{UserID: "A", Position: 1}, Result{UserID: "B", Position: 2}),
	})
	if _, ok := stats["C"]; ok {
		t.Error("absent player appeared in standings")
	}
	if len(stats) != 2 {
		t.Errorf("got %d players, want 2", len(stats))
	}
}

func TestAccumulateEmptyInput(t *testing.T) {
	if stats := Accumulate(nil); len(stats) != 0 {
		t.Errorf("empty input produced %d players", len(stats))
	}
}

func TestAccumulateRebuysAndCustomBuyin(t *testing.T) {
	games := []Game{
		{
			Status: StatusCompleted,
			Date:   day(1),
			Buyin:  50,
			Results: []Result{
				{UserID: "A", Position: 1, Winnings: 150, Rebuys: 2},
				{UserID: "B", Position: 2},
			},
		},
	}

	stats := Accumulate(games)
	// Base 50 plus two rebuys at the game's own buyin.
	if !almostEqual(stats["A"].TotalBuyins, 150) {
		t.Errorf("A totalBuyins = %v, want 150", stats["A"].TotalBuyins)
	}
	if stats["A"].Rebuys != 2 {
		t.Errorf("A rebuys = %d, want 2", stats["A"].Rebuys)
	}
	if !almostEqual(stats["B"].TotalBuyins, 50) {
		t.Errorf("B totalBuyins = %v, want 50", stats["B"].TotalBuyins)
	}
}

func TestAccumulateSideBets(t *testing.T) {
	games := []Game{
		completedGame(day(1),
			Result{UserID: "A", Position: 1, BestHandParticipant: true, BestHandWinner: true},
			Result{UserID: "B", Position: 2, BestHandParticipant: true},
			Result{UserID: "C", Position: 3, BestHandParticipant: true},
		),
	}

	stats := Accumulate(games)
	a := stats["A"]
	if !almostEqual(a.BestHandWinnings, 15) {
		t.Errorf("A bestHandWinnings = %v, want 15", a.BestHandWinnings)
	}
	if !almostEqual(a.Winnings, 15) {
		t.Errorf("A winnings = %v, want 15", a.Winnings)
	}
	if a.BestHandWins != 1 || a.BestHandParticipations != 1 {
		t.Errorf("A bestHandWins/participations = %d/%d, want 1/1", a.BestHandWins, a.BestHandParticipations)
	}
	for _, id := range []string{"A", "B", "C"} {
		ps := stats[id]
		if !almostEqual(ps.BestHandCosts, 5) {
			t.Errorf("%s bestHandCosts = %v, want 5", id, ps.BestHandCosts)
		}
		if !almostEqual(ps.TotalBuyins, 25) {
			t.Errorf("%s totalBuyins = %v, want 25 (buyin + side bet)", id, ps.TotalBuyins)
		}
	}
}

func TestAccumulateSideBetNoWinner(t *testing.T) {
	games := []Game{
		completedGame(day(1),
			Result{UserID: "A", Position: 1, BestHandParticipant: true},
			Result{UserID: "B", Position: 2, BestHandParticipant: true},
			Result{UserID: "C", Position: 3, BestHandParticipant: true},
		),
	}

	stats := Accumulate(games)
	for _, id := range []string{"A", "B", "C"} {
		ps := stats[id]
		if !almostEqual(ps.BestHandWinnings, 0) || !almostEqual(ps.Winnings, 0) {
			t.Errorf("%s received winnings from a winnerless pot", id)
		}
		if !almostEqual(ps.BestHandCosts, 5) {
			t.Errorf("%s bestHandCosts = %v, want 5", id, ps.BestHandCosts)
		}
	}
}

func TestStreakFromOrderedGames(t *testing.T) {
	// A: loss, win, win -> two-game win streak.
	// B: win, loss, loss -> two-game loss streak.
	games := []Game{
		completedGame(day(3), Result{UserID: "A", Position: 1}, Result{UserID: "B", Position: 2}),
		completedGame(day(1), Result{UserID: "A", Position: 2}, Result{UserID: "B", Position: 1}),
		completedGame(day(2), Result{UserID: "A", Position: 1}, Result{UserID: "B", Position: 2}),
	}

	stats := Accumulate(games)
	if stats["A"].CurrentStreak != 2 || stats["A"].StreakType != "win" {
		t.Errorf("A streak = %d %q, want 2 win", stats["A"].CurrentStreak, stats["A"].StreakType)
	}
	if stats["B"].CurrentStreak != 2 || stats["B"].StreakType != "loss" {
		t.Errorf("B streak = %d %q, want 2 loss", stats["B"].CurrentStreak, stats["B"].StreakType)
	}
}

func TestStreakUnaffectedByOtherPlayersGames(t *testing.T) {
	base := []Game{
		completedGame(day(1), Result{UserID: "A", Position: 1}, Result{UserID: "X", Position: 2}),
		completedGame(day(5), Result{UserID: "A", Position: 1}, Result{UserID: "X", Position: 2}),
	}
	before := Accumulate(base)

	// Insert a game for B between A's two games.
	withB := append([]Game{
		completedGame(day(3), Result{UserID: "B", Position: 1}, Result{UserID: "Y", Position: 2}),
	}, base...)
	after := Accumulate(withB)

	if before["A"].CurrentStreak != after["A"].CurrentStreak ||
		before["A"].StreakType != after["A"].StreakType {
		t.Errorf("A streak changed from %d %q to %d %q after unrelated game",
			before["A"].CurrentStreak, before["A"].StreakType,
			after["A"].CurrentStreak, after["A"].StreakType)
	}
}
