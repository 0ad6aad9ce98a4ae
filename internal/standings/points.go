package standings

// Points computes a single player's point share for one game.
//
// An outright finish at position p in an n-player game is worth n-p points.
// When several players share a position the block's points are split equally
// among them, so per-game totals always sum to n*(n-1)/2 regardless of ties.
// A one-player game is worth zero.
//
// Position values are trusted as recorded; out-of-range positions are an
// input-validation concern upstream of this package.
func Points(results []Result, player Result) float64 {
	total := len(results)

	tied := 0
	for _, r := range results {
		if r.Position == player.Position {
			tied++
		}
	}

	points := float64(total - player.Position)
	if tied > 1 {
		points /= float64(tied)
	}
	return points
}
