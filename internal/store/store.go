package store

import (
	"context"
	"time"
)

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Group struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
}

// Member is a group roster entry joined with the user's display fields.
type Member struct {
	UserID   string
	Name     string
	Email    string
	Role     string // "owner" or "member"
	JoinedAt time.Time
}

type Game struct {
	ID        string
	GroupID   string
	Date      time.Time // UTC; midnight when no start time was given
	Status    string    // "scheduled" or "completed"
	Buyin     float64
	Reminded  bool // a pre-game reminder has been pushed
	CreatedAt time.Time
	UpdatedAt time.Time
	Results   []GameResult
}

// GameResult is one participant's line in a game. For scheduled games only
// RSVPStatus is meaningful; the result fields are filled in when the game
// completes.
type GameResult struct {
	GameID              string
	UserID              string
	Position            int
	Winnings            float64
	Rebuys              int
	BestHandParticipant bool
	BestHandWinner      bool
	RSVPStatus          string // "in", "out", "maybe", or empty
}

type PushSubscription struct {
	ID        int
	UserID    string
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}

type Store interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error

	CreateGroup(ctx context.Context, group *Group) error
	GetGroup(ctx context.Context, groupID string) (*Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
	ListUserGroups(ctx context.Context, userID string) ([]Group, error)

	AddMember(ctx context.Context, groupID, userID, role string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string) ([]Member, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)

	CreateGame(ctx context.Context, game *Game) error
	UpdateGame(ctx context.Context, game *Game) error
	DeleteGame(ctx context.Context, gameID string) error
	GetGame(ctx context.Context, gameID string) (*Game, error)
	ListGroupGames(ctx context.Context, groupID string) ([]Game, error)

	SetRSVP(ctx context.Context, gameID, userID, status string) error

	ListUnremindedGames(ctx context.Context, from, until time.Time) ([]Game, error)
	MarkReminded(ctx context.Context, gameID string) error

	SavePushSubscription(ctx context.Context, sub *PushSubscription) error
	GetPushSubscriptions(ctx context.Context, userID string) ([]PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error

	Close() error
}
