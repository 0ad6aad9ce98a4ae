// Package standings turns raw game records into ranked season statistics.
//
// The package is pure computation: callers fetch a group's games from the
// store, convert them to the types below, and every request recomputes the
// table from scratch. Nothing in here touches storage or retains state
// between calls.
package standings

import "time"

// GameStatus describes a game's lifecycle state. Only completed games
// contribute to standings.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusCompleted GameStatus = "completed"
)

const (
	// DefaultBuyin is the base entry cost assumed when a game records none.
	DefaultBuyin = 20.0

	// SideBetCost is the fixed per-participant cost of the best-hand side bet.
	SideBetCost = 5.0

	// rankEpsilon tolerates float drift from tie-split point division when
	// deciding whether two players share a rank.
	rankEpsilon = 0.001
)

// Result is one player's line in a single game.
type Result struct {
	UserID              string
	Position            int // finishing rank within the game, 1 = winner
	Winnings            float64
	Rebuys              int
	BestHandParticipant bool
	BestHandWinner      bool
}

// Game is one completed or scheduled game. Date is stored in UTC; when the
// game has no start time the date carries midnight. Buyin of 0 means the
// game uses DefaultBuyin.
type Game struct {
	ID      string
	GroupID string
	Date    time.Time
	Status  GameStatus
	Buyin   float64
	Results []Result
}

// PlayerStats is one player's accumulated season line. Name is display-only
// and filled in by the caller from the group roster; the engine never reads
// it except for the name display sort.
type PlayerStats struct {
	UserID                 string  `json:"userId"`
	Name                   string  `json:"name,omitempty"`
	Rank                   int     `json:"rank"`
	Games                  int     `json:"games"`
	Points                 float64 `json:"points"`
	Wins                   int     `json:"wins"`
	WinRate                float64 `json:"winRate"`
	AvgPosition            float64 `json:"avgPosition"`
	Winnings               float64 `json:"winnings"`
	TotalBuyins            float64 `json:"totalBuyins"`
	NetWinnings            float64 `json:"netWinnings"`
	Rebuys                 int     `json:"rebuys"`
	CurrentStreak          int     `json:"currentStreak"`
	StreakType             string  `json:"streakType,omitempty"` // "win" or "loss", empty when no games
	BestHandWins           int     `json:"bestHandWins"`
	BestHandParticipations int     `json:"bestHandParticipations"`
	BestHandWinnings       float64 `json:"bestHandWinnings"`
	BestHandCosts          float64 `json:"bestHandCosts"`
}
