package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS groups (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL REFERENCES users(id),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS group_members (
			group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES users(id),
			role TEXT NOT NULL DEFAULT 'member',
			joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (group_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			date TIMESTAMP NOT NULL,
			status TEXT NOT NULL,
			buyin REAL NOT NULL DEFAULT 20,
			reminded INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_group_date ON games(group_id, date)`,
		`CREATE TABLE IF NOT EXISTS game_results (
			game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES users(id),
			position INTEGER DEFAULT 0,
			winnings REAL DEFAULT 0,
			rebuys INTEGER DEFAULT 0,
			best_hand_participant INTEGER DEFAULT 0,
			best_hand_winner INTEGER DEFAULT 0,
			rsvp_status TEXT DEFAULT '',
			PRIMARY KEY (game_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS push_subscriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL REFERENCES users(id),
			endpoint TEXT NOT NULL UNIQUE,
			p256dh TEXT NOT NULL,
			auth TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at
		 FROM users WHERE email = ?`, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt,
	)
	return err
}

// UpdateUser updates a user's profile fields.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *User) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = ?, name = ?, password_hash = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.Name, user.PasswordHash, time.Now().UTC(), user.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// CreateGroup inserts a group and its owner membership in one transaction.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)`,
		group.ID, group.Name, group.OwnerID, group.CreatedAt,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, 'owner')`,
		group.ID, group.OwnerID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	var group Group
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, created_at FROM groups WHERE id = ?`,
		groupID).Scan(&group.ID, &group.Name, &group.OwnerID, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteGroup removes a group; memberships, games and results cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, groupID)
	return err
}

// ListUserGroups returns all groups the user belongs to.
func (s *SQLiteStore) ListUserGroups(ctx context.Context, userID string) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.owner_id, g.created_at
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// AddMember adds a user to a group roster.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID, userID, role string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupID, userID, role,
	)
	return err
}

// RemoveMember removes a user from a group roster.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	)
	return err
}

// ListMembers returns the group roster joined with user display fields.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT gm.user_id, u.name, u.email, gm.role, gm.joined_at
		 FROM group_members gm
		 JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id = ?
		 ORDER BY u.name`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// IsMember reports whether the user belongs to the group.
func (s *SQLiteStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateGame inserts a game and its result rows in one transaction.
func (s *SQLiteStore) CreateGame(ctx context.Context, game *Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games (id, group_id, date, status, buyin, reminded, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		game.ID, game.GroupID, game.Date, game.Status, game.Buyin,
		game.Reminded, game.CreatedAt, game.UpdatedAt,
	); err != nil {
		return err
	}
	if err := insertResults(ctx, tx, game.ID, game.Results); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateGame rewrites a game's row and replaces its result set.
func (s *SQLiteStore) UpdateGame(ctx context.Context, game *Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE games SET date = ?, status = ?, buyin = ?, reminded = ?, updated_at = ?
		 WHERE id = ?`,
		game.Date, game.Status, game.Buyin, game.Reminded, time.Now().UTC(), game.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("game not found")
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM game_results WHERE game_id = ?`, game.ID); err != nil {
		return err
	}
	if err := insertResults(ctx, tx, game.ID, game.Results); err != nil {
		return err
	}

	return tx.Commit()
}

func insertResults(ctx context.Context, tx *sql.Tx, gameID string, results []GameResult) error {
	for _, r := range results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_results
			 (game_id, user_id, position, winnings, rebuys, best_hand_participant, best_hand_winner, rsvp_status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			gameID, r.UserID, r.Position, r.Winnings, r.Rebuys,
			r.BestHandParticipant, r.BestHandWinner, r.RSVPStatus,
		); err != nil {
			return err
		}
	}
	return nil
}

// DeleteGame removes a game; its results cascade.
func (s *SQLiteStore) DeleteGame(ctx context.Context, gameID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, gameID)
	return err
}

// GetGame retrieves a game with its results.
func (s *SQLiteStore) GetGame(ctx context.Context, gameID string) (*Game, error) {
	var game Game
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, date, status, buyin, reminded, created_at, updated_at
		 FROM games WHERE id = ?`, gameID).Scan(
		&game.ID, &game.GroupID, &game.Date, &game.Status, &game.Buyin,
		&game.Reminded, &game.CreatedAt, &game.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	game.Results, err = s.gameResults(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *SQLiteStore) gameResults(ctx context.Context, gameID string) ([]GameResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, user_id, position, winnings, rebuys,
		        best_hand_participant, best_hand_winner, rsvp_status
		 FROM game_results WHERE game_id = ?`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		var r GameResult
		if err := rows.Scan(&r.GameID, &r.UserID, &r.Position, &r.Winnings, &r.Rebuys,
			&r.BestHandParticipant, &r.BestHandWinner, &r.RSVPStatus); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListGroupGames returns all of a group's games with results, oldest first.
func (s *SQLiteStore) ListGroupGames(ctx context.Context, groupID string) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, date, status, buyin, reminded, created_at, updated_at
		 FROM games WHERE group_id = ? ORDER BY date`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.GroupID, &g.Date, &g.Status, &g.Buyin,
			&g.Reminded, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range games {
		games[i].Results, err = s.gameResults(ctx, games[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return games, nil
}

// SetRSVP upserts a player's RSVP row for a scheduled game.
func (s *SQLiteStore) SetRSVP(ctx context.Context, gameID, userID, status string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO game_results (game_id, user_id, rsvp_status)
		 VALUES (?, ?, ?)
		 ON CONFLICT(game_id, user_id) DO UPDATE SET rsvp_status = excluded.rsvp_status`,
		gameID, userID, status,
	)
	return err
}

// ListUnremindedGames returns scheduled games in [from, until) that have not
// had a reminder pushed yet.
func (s *SQLiteStore) ListUnremindedGames(ctx context.Context, from, until time.Time) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, date, status, buyin, reminded, created_at, updated_at
		 FROM games
		 WHERE status = 'scheduled' AND reminded = 0 AND date >= ? AND date < ?
		 ORDER BY date`, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.GroupID, &g.Date, &g.Status, &g.Buyin,
			&g.Reminded, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range games {
		games[i].Results, err = s.gameResults(ctx, games[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return games, nil
}

// MarkReminded flags a game so the reminder job skips it on later runs.
func (s *SQLiteStore) MarkReminded(ctx context.Context, gameID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET reminded = 1 WHERE id = ?`, gameID)
	return err
}

// SavePushSubscription stores or refreshes a browser push subscription.
func (s *SQLiteStore) SavePushSubscription(ctx context.Context, sub *PushSubscription) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET
		 	user_id = excluded.user_id,
		 	p256dh = excluded.p256dh,
		 	auth = excluded.auth`,
		sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, sub.CreatedAt,
	)
	return err
}

// GetPushSubscriptions returns all subscriptions for a user.
func (s *SQLiteStore) GetPushSubscriptions(ctx context.Context, userID string) ([]PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, endpoint, p256dh, auth, created_at
		 FROM push_subscriptions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []PushSubscription
	for rows.Next() {
		var sub PushSubscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh,
			&sub.Auth, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// DeletePushSubscription removes a subscription by endpoint.
func (s *SQLiteStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	return err
}
