package redisdb

import (
	"testing"
	"time"

	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_jobKey(t *testing.T) {
	assert.Equal(t, "job:1", jobKey("1"))
}

func Test_decodeJob(t *testing.T) {
	j, err := decodeJob([]byte(`{"id":"1","status":"pending","progress":10,"video":{"fileName":"a.mp4"}}`))
	require.Nil(t, err)
	assert.Equal(t, &persistence.Job{ID: "1", Status: "pending", Progress: 10,
		Video: persistence.VideoFile{FileName: "a.mp4"}}, j)
	_, err = decodeJob([]byte(`{`))
	assert.NotNil(t, err)
}

func TestNew(t *testing.T) {
	_, err := NewJobStore(nil, time.Hour)
	assert.NotNil(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:1"})
	defer rdb.Close()
	s, err := NewJobStore(rdb, -time.Hour)
	require.Nil(t, err)
	assert.Equal(t, time.Duration(0), s.ttl)
	_, err = NewRefreshTokens(rdb, 0)
	assert.NotNil(t, err)
	_, err = NewRefreshTokens(nil, time.Hour)
	assert.NotNil(t, err)
	_, err = NewRefreshTokens(rdb, time.Hour)
	assert.Nil(t, err)
}
