package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/airenas/async-api/pkg/miniofs"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prismwriting/prism/internal/pkg/analyzer"
	"github.com/prismwriting/prism/internal/pkg/jobstore"
	"github.com/prismwriting/prism/internal/pkg/postgres"
	"github.com/prismwriting/prism/internal/pkg/redisdb"
	"github.com/prismwriting/prism/internal/pkg/storage"
	"github.com/prismwriting/prism/internal/pkg/worker"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/vgarvardt/gue/v5"
	"github.com/vgarvardt/gue/v5/adapter/pgxv5"
)

const (
	// StoreMemory keeps jobs in process
	StoreMemory = "memory"
	// StoreRedis keeps jobs in redis
	StoreRedis = "redis"
	// StorePostgres keeps jobs in postgres
	StorePostgres = "postgres"
)

// Backends creates connections from the config once and closes them at the end
type Backends struct {
	cfg    *viper.Viper
	pool   *pgxpool.Pool
	rdb    *redis.Client
	jobs   jobstore.Store
	gemini *analyzer.Gemini
}

const (
	// DefaultJobTTL is used when jobs.ttl is not configured
	DefaultJobTTL = 72 * time.Hour
)

// NewBackends creates lazy backend holder, sets defaults for the job store keys
func NewBackends(cfg *viper.Viper) *Backends {
	cfg.SetDefault("jobs.ttl", DefaultJobTTL)
	cfg.SetDefault("jobs.store", StorePostgres)
	return &Backends{cfg: cfg}
}

// DBPool returns postgres pool, db.url is required
func (b *Backends) DBPool(ctx context.Context) (*pgxpool.Pool, error) {
	if b.pool != nil {
		return b.pool, nil
	}
	dbConfig, err := pgxpool.ParseConfig(b.cfg.GetString("db.url"))
	if err != nil {
		return nil, fmt.Errorf("can't parse db config: %w", err)
	}
	addDBLog(dbConfig)
	goapp.Log.Info().Int32("max_conn", dbConfig.MaxConns).Int32("min_conn", dbConfig.MinConns).Msg("db info")
	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("can't init db pool: %w", err)
	}
	_, err = goapp.InvokeWithBackoff(ctx, func() (interface{}, bool, error) {
		pCtx, cf := context.WithTimeout(ctx, 5*time.Second)
		defer cf()
		err := pool.Ping(pCtx)
		if err != nil {
			goapp.Log.Warn().Err(err).Msg("db ping")
		}
		return nil, true, err
	}, newBackoff())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("can't reach db: %w", err)
	}
	b.pool = pool
	return pool, nil
}

// Redis returns redis client, redis.url is required
func (b *Backends) Redis(ctx context.Context) (*redis.Client, error) {
	if b.rdb != nil {
		return b.rdb, nil
	}
	rdb, err := redisdb.NewClient(ctx, b.cfg.GetString("redis.url"))
	if err != nil {
		return nil, err
	}
	b.rdb = rdb
	return rdb, nil
}

// JobStore returns job store selected by jobs.store,
// the memory store is allowed only with worker.local as separate processes can't share it
func (b *Backends) JobStore(ctx context.Context) (jobstore.Store, error) {
	if b.jobs != nil {
		return b.jobs, nil
	}
	ttl := b.cfg.GetDuration("jobs.ttl")
	kind := b.cfg.GetString("jobs.store")
	goapp.Log.Info().Str("store", kind).Dur("ttl", ttl).Msg("job store")
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	switch kind {
	case StoreMemory:
		if !b.cfg.GetBool("worker.local") {
			return nil, fmt.Errorf("job store '%s' needs worker.local=true", kind)
		}
		b.jobs = jobstore.NewMemory(ttl)
	case StoreRedis:
		rdb, err := b.Redis(ctx)
		if err != nil {
			return nil, err
		}
		if b.jobs, err = redisdb.NewJobStore(rdb, ttl); err != nil {
			return nil, err
		}
	case StorePostgres, "":
		pool, err := b.DBPool(ctx)
		if err != nil {
			return nil, err
		}
		if b.jobs, err = postgres.NewJobStore(pool, ttl); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown job store '%s'", kind)
	}
	return b.jobs, nil
}

// ExpiredIDs returns provider of expired job IDs for the configured store,
// nil for the memory store that evicts by itself
func (b *Backends) ExpiredIDs(ctx context.Context) (IDsProvider, error) {
	st, err := b.JobStore(ctx)
	if err != nil {
		return nil, err
	}
	switch s := st.(type) {
	case *redisdb.JobStore:
		return s, nil
	case *postgres.JobStore:
		return postgres.NewDBIdsProvider(b.pool)
	}
	return nil, nil
}

// IDsProvider returns expired IDs
type IDsProvider interface {
	GetExpired(ctx context.Context) ([]string, error)
}

// Gue returns postgres queue client
func (b *Backends) Gue(ctx context.Context) (*gue.Client, error) {
	pool, err := b.DBPool(ctx)
	if err != nil {
		return nil, err
	}
	res, err := gue.NewClient(pgxv5.NewConnPool(pool))
	if err != nil {
		return nil, fmt.Errorf("can't init gue: %w", err)
	}
	return res, nil
}

// Sender returns postgres queue sender
func (b *Backends) Sender(ctx context.Context) (*postgres.Sender, error) {
	pool, err := b.DBPool(ctx)
	if err != nil {
		return nil, err
	}
	return postgres.NewSender(pool)
}

// Analyzer returns Gemini analyzer if gemini.key is set, local one otherwise
func (b *Backends) Analyzer(ctx context.Context) (worker.Analyzer, error) {
	key := b.cfg.GetString("gemini.key")
	if key == "" {
		goapp.Log.Info().Str("analyzer", "local").Send()
		return analyzer.NewLocal(), nil
	}
	if b.gemini != nil {
		return b.gemini, nil
	}
	res, err := analyzer.NewGemini(ctx, key, b.cfg.GetString("gemini.model"))
	if err != nil {
		return nil, err
	}
	goapp.Log.Info().Str("analyzer", "gemini").Send()
	b.gemini = res
	return res, nil
}

// Filer returns minio file storage
func (b *Backends) Filer(ctx context.Context) (*miniofs.Filer, error) {
	res, err := miniofs.NewFiler(ctx, miniofs.Options{Bucket: b.cfg.GetString("filer.bucket"),
		URL: b.cfg.GetString("filer.url"), User: b.cfg.GetString("filer.user"), Key: b.cfg.GetString("filer.key")})
	if err != nil {
		return nil, fmt.Errorf("can't init filer: %w", err)
	}
	return res, nil
}

// Presigner returns direct upload URL maker
func (b *Backends) Presigner() (*storage.Presigner, error) {
	return storage.NewPresigner(storage.Options{URL: b.cfg.GetString("filer.url"), User: b.cfg.GetString("filer.user"),
		Key: b.cfg.GetString("filer.key"), Bucket: b.cfg.GetString("filer.bucket"), Secure: b.cfg.GetBool("filer.secure"),
		Region: b.cfg.GetString("filer.region"), Expiry: b.cfg.GetDuration("filer.presignExpiry")})
}

// Close releases connections
func (b *Backends) Close() {
	if b.gemini != nil {
		if err := b.gemini.Close(); err != nil {
			goapp.Log.Warn().Err(err).Msg("gemini close")
		}
	}
	if b.rdb != nil {
		if err := b.rdb.Close(); err != nil {
			goapp.Log.Warn().Err(err).Msg("redis close")
		}
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

func newBackoff() backoff.BackOff {
	res := backoff.NewExponentialBackOff()
	return backoff.WithMaxRetries(res, 5)
}

func addDBLog(dbConfig *pgxpool.Config) {
	logFunc := func(msg string) { goapp.Log.Debug().Msg(msg) }
	dbConfig.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
		logFunc("before connect")
		return nil
	}
	dbConfig.AfterConnect = func(ctx context.Context, c *pgx.Conn) error {
		logFunc("after connect")
		return nil
	}
	dbConfig.BeforeAcquire = func(ctx context.Context, c *pgx.Conn) bool {
		logFunc("before acquire")
		return true
	}
	dbConfig.AfterRelease = func(c *pgx.Conn) bool {
		logFunc("after release")
		return true
	}
}
