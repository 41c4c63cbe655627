package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to redis by URL, e.g. redis://localhost:6379/0
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("can't parse redis URL: %w", err)
	}
	res := redis.NewClient(opt)
	pCtx, cf := context.WithTimeout(ctx, 10*time.Second)
	defer cf()
	if err := res.Ping(pCtx).Err(); err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("can't ping redis: %w", err)
	}
	goapp.Log.Info().Str("addr", opt.Addr).Int("db", opt.DB).Msg("redis connected")
	return res, nil
}
