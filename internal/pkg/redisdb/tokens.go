package redisdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshPrefix = "refresh:"

// RefreshTokens keeps refresh token to user ID mapping
type RefreshTokens struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRefreshTokens creates token keeper
func NewRefreshTokens(rdb *redis.Client, ttl time.Duration) (*RefreshTokens, error) {
	if rdb == nil {
		return nil, fmt.Errorf("no redis client")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("wrong ttl %v", ttl)
	}
	return &RefreshTokens{rdb: rdb, ttl: ttl}, nil
}

// Save stores token
func (t *RefreshTokens) Save(ctx context.Context, token, userID string) error {
	if err := t.rdb.Set(ctx, refreshPrefix+token, userID, t.ttl).Err(); err != nil {
		return fmt.Errorf("can't store refresh token: %w", err)
	}
	return nil
}

// Take returns user ID and drops the token, "" if token is unknown or expired
func (t *RefreshTokens) Take(ctx context.Context, token string) (string, error) {
	res, err := t.rdb.GetDel(ctx, refreshPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("can't take refresh token: %w", err)
	}
	return res, nil
}

// Delete drops token
func (t *RefreshTokens) Delete(ctx context.Context, token string) error {
	if err := t.rdb.Del(ctx, refreshPrefix+token).Err(); err != nil {
		return fmt.Errorf("can't delete refresh token: %w", err)
	}
	return nil
}
