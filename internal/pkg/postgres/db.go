package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
)

const (
	emailLocked = 1
	emailSent   = 2
)

// DB provides operations with postgresql
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates DB instance
func NewDB(pool *pgxpool.Pool) (*DB, error) {
	if pool == nil {
		return nil, fmt.Errorf("no pool")
	}
	res := &DB{pool: pool}
	return res, nil
}

// LockEmailTable marks the email as being sent.
// Returns non retryable error if the email is already sent or is being sent now
func (db *DB) LockEmailTable(ctx context.Context, id, tp string) error {
	cmd, err := db.pool.Exec(ctx, `INSERT INTO email_lock(id, type, status) VALUES($1, $2, $3)
	ON CONFLICT (id, type) DO UPDATE SET status = $3 WHERE email_lock.status = 0`, id, tp, emailLocked)
	if err != nil {
		return fmt.Errorf("can't lock email(%s, %s): %w", id, tp, err)
	}
	if cmd.RowsAffected() != 1 {
		return utils.NewErrNonRetryable(fmt.Errorf("email(%s, %s) already locked", id, tp))
	}
	return nil
}

// UnLockEmailTable sets the final email status, 0 allows to retry sending
func (db *DB) UnLockEmailTable(ctx context.Context, id, tp string, value *int) error {
	v := 0
	if value != nil {
		v = *value
	}
	_, err := db.pool.Exec(ctx, `UPDATE email_lock SET status = $3 WHERE id = $1 AND type = $2`, id, tp, v)
	if err != nil {
		return fmt.Errorf("can't unlock email(%s, %s): %w", id, tp, err)
	}
	if v == emailSent {
		goapp.Log.Debug().Str("ID", id).Str("type", tp).Msg("email marked as sent")
	}
	return nil
}

// Live returns no error if db is reachable and initialized
func (db *DB) Live(ctx context.Context) error {
	var exists bool
	if err := db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT FROM pg_tables WHERE tablename = 'gue_jobs')`).Scan(&exists); err != nil {
		return fmt.Errorf("can't check table: %w", err)
	}
	if !exists {
		return fmt.Errorf("no migration done")
	}
	return nil
}

func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, persistence.ErrDuplicate)
	}
	return err
}
