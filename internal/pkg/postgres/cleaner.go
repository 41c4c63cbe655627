package postgres

import (
	"context"
	"fmt"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cleaner drops job related records by job ID
type Cleaner struct {
	pool   *pgxpool.Pool
	tables []string
}

// NewCleaner creates Cleaner for the email_lock table
func NewCleaner(pool *pgxpool.Pool) (*Cleaner, error) {
	if pool == nil {
		return nil, fmt.Errorf("no pool")
	}
	res := &Cleaner{pool: pool, tables: []string{"email_lock"}}
	return res, nil
}

// Clean deletes records
func (db *Cleaner) Clean(ctx context.Context, id string) error {
	for _, t := range db.tables {
		cmd, err := db.pool.Exec(ctx, `DELETE FROM `+t+` WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("can't delete %s(%s): %w", id, t, err)
		}
		goapp.Log.Info().Str("ID", id).Str("table", t).Int64("rows", cmd.RowsAffected()).Msg("deleted")
	}
	return nil
}
