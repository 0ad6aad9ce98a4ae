package standings

import "sort"

// Accumulate folds a set of game records into per-player season totals.
//
// Scheduled games are filtered out (callers may pre-filter; the filter is
// re-applied here so streaks never see a future game). The remaining games
// are processed in chronological order, which the streak derivation depends
// on. Players are created lazily on first appearance, so a user with no
// completed games never shows up in the returned map.
func Accumulate(games []Game) map[string]*PlayerStats {
	completed := make([]Game, 0, len(games))
	for _, g := range games {
		if g.Status == StatusCompleted {
			completed = append(completed, g)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Date.Before(completed[j].Date)
	})

	stats := make(map[string]*PlayerStats)
	history := make(map[string][]participation)

	for _, g := range completed {
		buyin := g.Buyin
		if buyin <= 0 {
			buyin = DefaultBuyin
		}

		// One side-bet resolution per game, shared by all its winners.
		sideBet := SideBetOutcome(g.Results)

		for _, r := range g.Results {
			ps := stats[r.UserID]
			if ps == nil {
				ps = &PlayerStats{UserID: r.UserID}
				stats[r.UserID] = ps
			}

			ps.Games++
			ps.Points += Points(g.Results, r)
			ps.Winnings += r.Winnings
			ps.TotalBuyins += buyin

			if r.Position == 1 {
				ps.Wins++
			}
			if r.Rebuys > 0 {
				ps.Rebuys += r.Rebuys
				ps.TotalBuyins += float64(r.Rebuys) * buyin
			}
			if r.BestHandParticipant {
				ps.BestHandParticipations++
				ps.BestHandCosts += SideBetCost
				ps.TotalBuyins += SideBetCost
			}
			if r.BestHandWinner {
				ps.BestHandWins++
				ps.BestHandWinnings += sideBet.PerWinnerShare
				ps.Winnings += sideBet.PerWinnerShare
			}

			history[r.UserID] = append(history[r.UserID], participation{
				position: r.Position,
				players:  len(g.Results),
			})
		}
	}

	for id, ps := range stats {
		h := history[id]
		if ps.Games > 0 {
			ps.WinRate = float64(ps.Wins) / float64(ps.Games) * 100

			posSum := 0
			for _, p := range h {
				posSum += p.position
			}
			ps.AvgPosition = float64(posSum) / float64(len(h))
		}
		ps.NetWinnings = ps.Winnings - ps.TotalBuyins
		ps.CurrentStreak, ps.StreakType = streak(h)
	}

	return stats
}
