// Package postgres persists users and URLs through database/sql on the
// pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samoylenkodmitry/shrtlin/core"
)

// UserRepository implements ports.UserRepository on Postgres.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository wraps an open database handle.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateFromChallenge inserts a new user. The unique constraint on the
// challenge column is the authoritative replay defense: when two
// requests race past the in-memory guard, exactly one insert survives
// and the loser gets core.ErrUserExists.
func (r *UserRepository) CreateFromChallenge(ctx context.Context, nick, challenge string) (core.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (nick, challenge)
		VALUES ($1, $2)
		ON CONFLICT (challenge) DO NOTHING
		RETURNING id
	`, nick, challenge).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserExists
	}
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	user := core.User{ID: id, Nick: nick}
	if nick == "" {
		// Default nick derives from the assigned id, so it has to be
		// written after the insert.
		user.Nick = fmt.Sprintf("user%d", id)
		if _, err := r.db.ExecContext(ctx, `UPDATE users SET nick = $1 WHERE id = $2`, user.Nick, id); err != nil {
			return core.User{}, fmt.Errorf("set default nick: %w", err)
		}
	}
	return user, nil
}

// Get returns the user or core.ErrUserNotFound.
func (r *UserRepository) Get(ctx context.Context, id int64) (core.User, error) {
	var user core.User
	err := r.db.QueryRowContext(ctx, `SELECT id, nick FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Nick)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// UpdateNick renames the user, reporting whether a row changed.
func (r *UserRepository) UpdateNick(ctx context.Context, id int64, nick string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET nick = $1 WHERE id = $2`, nick, id)
	if err != nil {
		return false, fmt.Errorf("update nick: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update nick: %w", err)
	}
	return n > 0, nil
}
