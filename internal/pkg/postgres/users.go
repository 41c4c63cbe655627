package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
)

const userFields = `id, email, name, password_hash, role, active, created, last_login`

// InsertUser saves user, returns persistence.ErrDuplicate if email is taken
func (db *DB) InsertUser(ctx context.Context, u *persistence.User) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO users(`+userFields+`) VALUES($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Active, u.Created, utils.ToSQLTime(u.LastLogin))
	if err != nil {
		return fmt.Errorf("can't insert user: %w", mapInsertErr(err))
	}
	return nil
}

// LoadUserByEmail returns nil if not found
func (db *DB) LoadUserByEmail(ctx context.Context, email string) (*persistence.User, error) {
	return db.oneUser(ctx, `SELECT `+userFields+` FROM users WHERE email = $1`, email)
}

// LoadUser returns nil if not found
func (db *DB) LoadUser(ctx context.Context, id string) (*persistence.User, error) {
	return db.oneUser(ctx, `SELECT `+userFields+` FROM users WHERE id = $1`, id)
}

// UpdateLastLogin sets last login time
func (db *DB) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := db.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("can't update user: %w", err)
	}
	return nil
}

// ListUsers returns a page of users, newest first, and the total count
func (db *DB) ListUsers(ctx context.Context, page, limit int) ([]*persistence.User, int, error) {
	var total int
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count users: %w", err)
	}
	l, o := pageParams(page, limit)
	rows, err := db.pool.Query(ctx, `SELECT `+userFields+` FROM users ORDER BY created DESC, id LIMIT $1 OFFSET $2`, l, o)
	if err != nil {
		return nil, 0, fmt.Errorf("can't select users: %w", err)
	}
	res, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, 0, fmt.Errorf("can't retrieve users: %w", err)
	}
	return res, total, nil
}

func (db *DB) oneUser(ctx context.Context, query string, args ...any) (*persistence.User, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("can't load user: %w", err)
	}
	res, err := pgx.CollectOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load user: %w", err)
	}
	return res, nil
}

func scanUser(row pgx.CollectableRow) (*persistence.User, error) {
	var res persistence.User
	var ll sql.NullTime
	if err := row.Scan(&res.ID, &res.Email, &res.Name, &res.PasswordHash, &res.Role, &res.Active, &res.Created, &ll); err != nil {
		return nil, err
	}
	res.LastLogin = utils.FromSQLTime(ll)
	return &res, nil
}
