package standings

// participation is one game's outcome in a player's transient history,
// recorded in chronological order during accumulation and discarded once
// derived stats are computed.
type participation struct {
	position int
	players  int // table size, kept for average-position bookkeeping
}

// streak derives the current win/loss streak from one player's ordered
// participation history: seed from the most recent game, then extend
// backward while the outcome matches. An empty history yields (0, "").
func streak(history []participation) (length int, streakType string) {
	if len(history) == 0 {
		return 0, ""
	}

	latestWin := history[len(history)-1].position == 1
	if latestWin {
		streakType = "win"
	} else {
		streakType = "loss"
	}

	length = 1
	for i := len(history) - 2; i >= 0; i-- {
		if (history[i].position == 1) != latestWin {
			break
		}
		length++
	}
	return length, streakType
}
