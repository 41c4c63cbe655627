package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const (
	jobPrefix = "job:"
	jobIndex  = "jobs:created"
)

// JobStore keeps jobs as json values with redis key expiration.
// A sorted set indexes IDs by creation time
type JobStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewJobStore creates store, ttl <= 0 disables expiration
func NewJobStore(rdb *redis.Client, ttl time.Duration) (*JobStore, error) {
	if rdb == nil {
		return nil, fmt.Errorf("no redis client")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &JobStore{rdb: rdb, ttl: ttl}, nil
}

// Set stores the job and renews expiration
func (s *JobStore) Set(ctx context.Context, id string, job *persistence.Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("can't marshal job: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, jobKey(id), b, s.ttl)
		p.ZAdd(ctx, jobIndex, redis.Z{Score: float64(job.Created.UnixMilli()), Member: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("can't save job %s: %w", id, err)
	}
	return nil
}

// Get returns the job or nil if not found
func (s *JobStore) Get(ctx context.Context, id string) (*persistence.Job, error) {
	b, err := s.rdb.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load job %s: %w", id, err)
	}
	return decodeJob(b)
}

// Has checks if job exists
func (s *JobStore) Has(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, jobKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("can't check job %s: %w", id, err)
	}
	return n > 0, nil
}

// Delete removes the job and its index entry
func (s *JobStore) Delete(ctx context.Context, id string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, jobKey(id))
		p.ZRem(ctx, jobIndex, id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("can't delete job %s: %w", id, err)
	}
	return del.Val() > 0, nil
}

// GetAll returns not expired jobs ordered by creation time
func (s *JobStore) GetAll(ctx context.Context) ([]*persistence.Job, error) {
	ids, err := s.rdb.ZRange(ctx, jobIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("can't read job index: %w", err)
	}
	res := []*persistence.Job{}
	if len(ids) == 0 {
		return res, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = jobKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("can't load jobs: %w", err)
	}
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		j, err := decodeJob([]byte(str))
		if err != nil {
			goapp.Log.Warn().Err(err).Str("ID", ids[i]).Msg("skip job")
			continue
		}
		res = append(res, j)
	}
	return res, nil
}

// Clear drops all jobs
func (s *JobStore) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, jobPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("can't scan jobs: %w", err)
	}
	keys = append(keys, jobIndex)
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("can't clear jobs: %w", err)
	}
	return nil
}

// Size returns count of not expired jobs
func (s *JobStore) Size(ctx context.Context) (int, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// GetExpired returns indexed IDs whose values are already expired by redis
func (s *JobStore) GetExpired(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.ZRange(ctx, jobIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("can't read job index: %w", err)
	}
	cmds := make([]*redis.IntCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.Exists(ctx, jobKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("can't check jobs: %w", err)
	}
	res := []string{}
	for i, c := range cmds {
		if c.Val() == 0 {
			res = append(res, ids[i])
		}
	}
	return res, nil
}

func jobKey(id string) string {
	return jobPrefix + id
}

func decodeJob(b []byte) (*persistence.Job, error) {
	var res persistence.Job
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("can't unmarshal job: %w", err)
	}
	return &res, nil
}
