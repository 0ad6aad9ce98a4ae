package standings

import (
	"math"
	"sort"
	"strings"
)

// Direction selects ascending or descending display order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Rank assigns dense ranks by points and returns the table in rank order.
//
// Ties share a rank and the next distinct point total gets the previous
// rank plus one, so rank values are contiguous from 1 with no gaps. Point
// equality is judged within a small epsilon because tie-splitting produces
// totals like 1/3 that drift under float arithmetic. Same-rank players are
// ordered by user ID so repeated computations give identical output; the
// caller's display sort reorders freely without touching rank values.
func Rank(stats map[string]*PlayerStats) []PlayerStats {
	ranked := make([]PlayerStats, 0, len(stats))
	for _, ps := range stats {
		ranked = append(ranked, *ps)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	for i := range ranked {
		switch {
		case i == 0:
			ranked[i].Rank = 1
		case math.Abs(ranked[i].Points-ranked[i-1].Points) < rankEpsilon:
			ranked[i].Rank = ranked[i-1].Rank
		default:
			ranked[i].Rank = ranked[i-1].Rank + 1
		}
	}

	return ranked
}

// SortBy reorders a ranked table for display by any column. The sort is
// stable and independent of rank assignment: rank values were fixed by
// Rank and stay put no matter which column the table is shown sorted by.
// Unknown fields fall back to rank order.
func SortBy(players []PlayerStats, field string, dir Direction) {
	less := lessByField(field)
	sort.SliceStable(players, func(i, j int) bool {
		if dir == Descending {
			return less(players[j], players[i])
		}
		return less(players[i], players[j])
	})
}

func lessByField(field string) func(a, b PlayerStats) bool {
	switch strings.ToLower(field) {
	case "name":
		return func(a, b PlayerStats) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case "userid":
		return func(a, b PlayerStats) bool { return a.UserID < b.UserID }
	case "games":
		return func(a, b PlayerStats) bool { return a.Games < b.Games }
	case "points":
		return func(a, b PlayerStats) bool { return a.Points < b.Points }
	case "wins":
		return func(a, b PlayerStats) bool { return a.Wins < b.Wins }
	case "winrate":
		return func(a, b PlayerStats) bool { return a.WinRate < b.WinRate }
	case "avgposition":
		return func(a, b PlayerStats) bool { return a.AvgPosition < b.AvgPosition }
	case "winnings":
		return func(a, b PlayerStats) bool { return a.Winnings < b.Winnings }
	case "totalbuyins":
		return func(a, b PlayerStats) bool { return a.TotalBuyins < b.TotalBuyins }
	case "netwinnings":
		return func(a, b PlayerStats) bool { return a.NetWinnings < b.NetWinnings }
	case "rebuys":
		return func(a, b PlayerStats) bool { return a.Rebuys < b.Rebuys }
	case "currentstreak", "streak":
		return func(a, b PlayerStats) bool { return a.CurrentStreak < b.CurrentStreak }
	case "besthandwins":
		return func(a, b PlayerStats) bool { return a.BestHandWins < b.BestHandWins }
	case "besthandwinnings":
		return func(a, b PlayerStats) bool { return a.BestHandWinnings < b.BestHandWinnings }
	default:
		return func(a, b PlayerStats) bool { return a.Rank < b.Rank }
	}
}
