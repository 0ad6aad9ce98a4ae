package standings

// SideBet is the resolved best-hand pot for one game.
type SideBet struct {
	Pot            float64
	PerWinnerShare float64
}

// SideBetOutcome resolves the best-hand side bet for one game. Every
// participant pays SideBetCost into the pot; the pot splits equally among
// the recorded winners. With no winners the share is zero and the pot is
// simply forfeited (participants still bear the cost during accumulation).
//
// The source data does not force a winner to also be marked a participant,
// and this deliberately isn't validated here: the recorded flags are taken
// at face value.
func SideBetOutcome(results []Result) SideBet {
	participants := 0
	winners := 0
	for _, r := range results {
		if r.BestHandParticipant {
			participants++
		}
		if r.BestHandWinner {
			winners++
		}
	}

	pot := float64(participants) * SideBetCost
	share := 0.0
	if winners > 0 {
		share = pot / float64(winners)
	}
	return SideBet{Pot: pot, PerWinnerShare: share}
}
