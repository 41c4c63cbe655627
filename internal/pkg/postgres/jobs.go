package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

// JobStore keeps video jobs in the video_jobs table as jsonb
type JobStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

// NewJobStore creates job store, ttl <= 0 disables expiration
func NewJobStore(pool *pgxpool.Pool, ttl time.Duration) (*JobStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("no pool")
	}
	return &JobStore{pool: pool, ttl: ttl, now: time.Now}, nil
}

// Set inserts or replaces the job, expiration is renewed
func (s *JobStore) Set(ctx context.Context, id string, job *persistence.Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("can't marshal job: %w", err)
	}
	var expires *time.Time
	if s.ttl > 0 {
		t := s.now().Add(s.ttl)
		expires = &t
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO video_jobs(id, data, created, expires) VALUES($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, expires = EXCLUDED.expires`, id, b, job.Created, expires)
	if err != nil {
		return fmt.Errorf("can't save job %s: %w", id, err)
	}
	return nil
}

// Get returns the job or nil if not found
func (s *JobStore) Get(ctx context.Context, id string) (*persistence.Job, error) {
	var b []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM video_jobs 
		WHERE id = $1 AND (expires IS NULL OR expires > $2)`, id, s.now()).Scan(&b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load job %s: %w", id, err)
	}
	return decodeJob(b)
}

// Has checks if job exists
func (s *JobStore) Has(ctx context.Context, id string) (bool, error) {
	var res bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT FROM video_jobs 
		WHERE id = $1 AND (expires IS NULL OR expires > $2))`, id, s.now()).Scan(&res)
	if err != nil {
		return false, fmt.Errorf("can't check job %s: %w", id, err)
	}
	return res, nil
}

// Delete removes the job
func (s *JobStore) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM video_jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("can't delete job %s: %w", id, err)
	}
	return cmd.RowsAffected() > 0, nil
}

// GetAll returns not expired jobs ordered by creation time
func (s *JobStore) GetAll(ctx context.Context) ([]*persistence.Job, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM video_jobs 
		WHERE expires IS NULL OR expires > $1 ORDER BY created, id`, s.now())
	if err != nil {
		return nil, fmt.Errorf("can't select jobs: %w", err)
	}
	defer rows.Close()
	res := []*persistence.Job{}
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("can't retrieve job: %w", err)
		}
		j, err := decodeJob(b)
		if err != nil {
			return nil, err
		}
		res = append(res, j)
	}
	return res, rows.Err()
}

// Clear drops all jobs
func (s *JobStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM video_jobs`); err != nil {
		return fmt.Errorf("can't clear jobs: %w", err)
	}
	return nil
}

// Size returns count of not expired jobs
func (s *JobStore) Size(ctx context.Context) (int, error) {
	var res int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM video_jobs 
		WHERE expires IS NULL OR expires > $1`, s.now()).Scan(&res)
	if err != nil {
		return 0, fmt.Errorf("can't count jobs: %w", err)
	}
	return res, nil
}

func decodeJob(b []byte) (*persistence.Job, error) {
	var res persistence.Job
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("can't unmarshal job: %w", err)
	}
	return &res, nil
}
