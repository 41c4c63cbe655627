package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBIdsProvider provides expired video job IDs from postgresql
type DBIdsProvider struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewDBIdsProvider creates provider instance
func NewDBIdsProvider(pool *pgxpool.Pool) (*DBIdsProvider, error) {
	if pool == nil {
		return nil, fmt.Errorf("no pool")
	}
	res := &DBIdsProvider{pool: pool, now: time.Now}
	return res, nil
}

// GetExpired returns IDs of jobs with passed expiration time
func (db *DBIdsProvider) GetExpired(ctx context.Context) ([]string, error) {
	exp := db.now()
	goapp.Log.Info().Time("older than", exp).Msg("selecting expired jobs...")
	rows, err := db.pool.Query(ctx, `SELECT id FROM video_jobs WHERE expires < $1`, exp)
	if err != nil {
		return nil, fmt.Errorf("can't select IDs: %w", err)
	}
	defer rows.Close()

	res := []string{}
	for rows.Next() {
		var id string
		err := rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("can't retrieve IDs: %w", err)
		}
		res = append(res, id)
	}
	return res, rows.Err()
}
